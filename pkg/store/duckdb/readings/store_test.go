package readings

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energy-tools/glow-atlas/pkg/models/store"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupTestDB(t *testing.T) *sql.DB {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	return db
}

func setupFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	readingStore, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: readingStore,
	}
}

func halfHourly(resourceID string, start time.Time, values ...float64) []store.ReadingRecord {
	records := make([]store.ReadingRecord, 0, len(values))
	for i, v := range values {
		records = append(records, store.ReadingRecord{
			ResourceID: resourceID,
			Timestamp:  start.Add(time.Duration(i) * 30 * time.Minute),
			Value:      v,
			Unit:       "kWh",
		})
	}
	return records
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		readingStore, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, readingStore)
	})
}

func TestStore_AddAndGetReadings(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.store.Add(ctx, halfHourly("res-1", start, 0.1, 0.2, 0.3)))

	t.Run("window query returns ascending rows", func(t *testing.T) {
		records, err := f.store.GetReadings(ctx, "res-1", start, start.Add(2*time.Hour))

		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, 0.1, records[0].Value)
		assert.Equal(t, start, records[0].Timestamp)
		for i := 1; i < len(records); i++ {
			assert.True(t, records[i-1].Timestamp.Before(records[i].Timestamp))
		}
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		records, err := f.store.GetReadings(ctx, "res-1", start, start.Add(time.Hour))

		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("re-adding the same bucket replaces instead of duplicating", func(t *testing.T) {
		require.NoError(t, f.store.Add(ctx, []store.ReadingRecord{{
			ResourceID: "res-1",
			Timestamp:  start,
			Value:      9.9,
			Unit:       "kWh",
		}}))

		records, err := f.store.GetReadings(ctx, "res-1", start, start.Add(30*time.Minute))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 9.9, records[0].Value)
	})

	t.Run("other resources stay untouched", func(t *testing.T) {
		records, err := f.store.GetReadings(ctx, "res-2", start, start.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, f.store.Add(ctx, nil))
	})
}

func TestStore_AddWithinTransaction(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tx, err := f.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	ctxWithTx := duckdb.WithTransaction(ctx, tx)
	require.NoError(t, f.store.Add(ctxWithTx, halfHourly("res-tx", start, 1.0)))
	require.NoError(t, tx.Rollback())

	records, err := f.store.GetReadings(ctx, "res-tx", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, records, "rolled back rows must not be visible")
}

func TestStore_Resources(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	resource := store.ResourceRecord{
		ResourceID: "res-1",
		EntityID:   "ve-1",
		Name:       "electricity consumption",
		Classifier: "electricity.consumption",
		BaseUnit:   "kWh",
	}

	require.NoError(t, f.store.UpsertResource(ctx, resource))

	t.Run("round trips the catalog entry", func(t *testing.T) {
		got, err := f.store.GetResource(ctx, "res-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, resource, *got)
	})

	t.Run("upsert replaces the existing entry", func(t *testing.T) {
		renamed := resource
		renamed.Name = "mains electricity"
		require.NoError(t, f.store.UpsertResource(ctx, renamed))

		all, err := f.store.GetResources(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "mains electricity", all[0].Name)
	})

	t.Run("unknown resource is nil, not an error", func(t *testing.T) {
		got, err := f.store.GetResource(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_GetDailyAggregates(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	require.NoError(t, f.store.Add(ctx, halfHourly("res-1", day1.Add(10*time.Hour), 0.5, 0.25, 0.25)))
	require.NoError(t, f.store.Add(ctx, halfHourly("res-1", day2.Add(8*time.Hour), 1.0, 1.5)))

	t.Run("sums per day", func(t *testing.T) {
		aggregates, err := f.store.GetDailyAggregates(ctx, "res-1", nil, nil)

		require.NoError(t, err)
		require.Len(t, aggregates, 2)

		assert.Equal(t, day1, aggregates[0].Date)
		assert.InDelta(t, 1.0, aggregates[0].Total, 1e-9)
		assert.Equal(t, int64(3), aggregates[0].Count)
		assert.Equal(t, "kWh", aggregates[0].Unit)

		assert.Equal(t, day2, aggregates[1].Date)
		assert.InDelta(t, 2.5, aggregates[1].Total, 1e-9)
		assert.Equal(t, int64(2), aggregates[1].Count)
	})

	t.Run("bounds narrow the aggregation", func(t *testing.T) {
		aggregates, err := f.store.GetDailyAggregates(ctx, "res-1", &day2, nil)

		require.NoError(t, err)
		require.Len(t, aggregates, 1)
		assert.Equal(t, day2, aggregates[0].Date)
	})
}

func TestStore_GetStats(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty archive has zero stats", func(t *testing.T) {
		stats, err := f.store.GetStats(ctx, "res-1")

		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.RecordsCount)
		assert.Nil(t, stats.FirstRecordTime)
		assert.Nil(t, stats.LastRecordTime)
	})

	t.Run("tracks count and bounds", func(t *testing.T) {
		require.NoError(t, f.store.Add(ctx, halfHourly("res-1", start, 0.1, 0.2, 0.3)))

		stats, err := f.store.GetStats(ctx, "res-1")

		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.RecordsCount)
		require.NotNil(t, stats.FirstRecordTime)
		require.NotNil(t, stats.LastRecordTime)
		assert.Equal(t, start, *stats.FirstRecordTime)
		assert.Equal(t, start.Add(time.Hour), *stats.LastRecordTime)
	})
}
