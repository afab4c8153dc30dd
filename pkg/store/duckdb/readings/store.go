// Package readings persists normalized meter readings in the DuckDB
// archive and serves windowed and aggregated queries over them.
package readings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/energy-tools/glow-atlas/pkg/models/store"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb"
)

type Store interface {
	// Add inserts records, replacing any existing row for the same resource
	// and bucket so re-fetching a window stays idempotent.
	Add(ctx context.Context, records []store.ReadingRecord) error
	UpsertResource(ctx context.Context, resource store.ResourceRecord) error
	GetResources(ctx context.Context) ([]store.ResourceRecord, error)
	GetResource(ctx context.Context, resourceID string) (*store.ResourceRecord, error)
	// GetReadings returns the rows for [startTime, endTime) in ascending
	// bucket order.
	GetReadings(ctx context.Context, resourceID string, startTime, endTime time.Time) ([]store.ReadingRecord, error)
	GetDailyAggregates(ctx context.Context, resourceID string, startTime, endTime *time.Time) ([]store.DailyReadingAggregate, error)
	GetStats(ctx context.Context, resourceID string) (*store.ReadingStats, error)
}

type readingStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &readingStore{db: db}, nil
}

func (r *readingStore) Add(ctx context.Context, records []store.ReadingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT OR REPLACE INTO readings (resource_id, ts, value, unit)
		VALUES (?, ?, ?, ?)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = r.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}

	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.ResourceID,
			record.Timestamp.UTC(),
			record.Value,
			record.Unit,
		)

		if err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
	}

	return nil
}

func (r *readingStore) UpsertResource(ctx context.Context, resource store.ResourceRecord) error {
	query := `
		INSERT OR REPLACE INTO resources (resource_id, entity_id, name, classifier, base_unit)
		VALUES (?, ?, ?, ?, ?)`

	tx := duckdb.GetTransaction(ctx)
	var err error
	if tx == nil {
		_, err = r.db.ExecContext(ctx, query,
			resource.ResourceID, resource.EntityID, resource.Name, resource.Classifier, resource.BaseUnit)
	} else {
		_, err = tx.ExecContext(ctx, query,
			resource.ResourceID, resource.EntityID, resource.Name, resource.Classifier, resource.BaseUnit)
	}

	if err != nil {
		return fmt.Errorf("upsert resource: %w", err)
	}
	return nil
}

func (r *readingStore) GetResources(ctx context.Context) ([]store.ResourceRecord, error) {
	query := `
		SELECT resource_id, entity_id, name, classifier, base_unit
		FROM resources
		ORDER BY resource_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	resources := make([]store.ResourceRecord, 0)
	for rows.Next() {
		var rec store.ResourceRecord
		if err := rows.Scan(&rec.ResourceID, &rec.EntityID, &rec.Name, &rec.Classifier, &rec.BaseUnit); err != nil {
			return nil, err
		}
		resources = append(resources, rec)
	}
	return resources, rows.Err()
}

func (r *readingStore) GetResource(ctx context.Context, resourceID string) (*store.ResourceRecord, error) {
	query := `
		SELECT resource_id, entity_id, name, classifier, base_unit
		FROM resources
		WHERE resource_id = ?`

	var rec store.ResourceRecord
	err := r.db.QueryRowContext(ctx, query, resourceID).
		Scan(&rec.ResourceID, &rec.EntityID, &rec.Name, &rec.Classifier, &rec.BaseUnit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query resource: %w", err)
	}
	return &rec, nil
}

func (r *readingStore) GetReadings(ctx context.Context, resourceID string, startTime, endTime time.Time) ([]store.ReadingRecord, error) {
	query := `
		SELECT resource_id, ts, value, unit
		FROM readings
		WHERE resource_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC`

	rows, err := r.db.QueryContext(ctx, query, resourceID, startTime.UTC(), endTime.UTC())
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	return scanReadingRows(rows)
}

func (r *readingStore) GetDailyAggregates(ctx context.Context, resourceID string, startTime, endTime *time.Time) ([]store.DailyReadingAggregate, error) {
	query := `
		SELECT CAST(date_trunc('day', ts) AS TIMESTAMP) AS day,
		       resource_id,
		       SUM(value) AS total,
		       COUNT(*) AS readings,
		       MAX(unit) AS unit
		FROM readings
		WHERE resource_id = ?`
	args := []interface{}{resourceID}

	if startTime != nil {
		query += " AND ts >= ?"
		args = append(args, startTime.UTC())
	}
	if endTime != nil {
		query += " AND ts < ?"
		args = append(args, endTime.UTC())
	}
	query += `
		GROUP BY day, resource_id
		ORDER BY day ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily aggregates: %w", err)
	}
	defer rows.Close()

	aggregates := make([]store.DailyReadingAggregate, 0)
	for rows.Next() {
		var agg store.DailyReadingAggregate
		if err := rows.Scan(&agg.Date, &agg.ResourceID, &agg.Total, &agg.Count, &agg.Unit); err != nil {
			return nil, err
		}
		agg.Date = agg.Date.UTC()
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

func (r *readingStore) GetStats(ctx context.Context, resourceID string) (*store.ReadingStats, error) {
	query := `
		SELECT COUNT(*) AS total_records, MIN(ts) AS earliest, MAX(ts) AS latest
		FROM readings
		WHERE resource_id = ?`

	var total int64
	var earliest, latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, resourceID).Scan(&total, &earliest, &latest); err != nil {
		return nil, fmt.Errorf("get reading stats: %w", err)
	}

	stats := &store.ReadingStats{RecordsCount: total}
	if earliest.Valid {
		t := earliest.Time.UTC()
		stats.FirstRecordTime = &t
	}
	if latest.Valid {
		t := latest.Time.UTC()
		stats.LastRecordTime = &t
	}
	return stats, nil
}

func scanReadingRows(rows *sql.Rows) ([]store.ReadingRecord, error) {
	records := make([]store.ReadingRecord, 0)
	for rows.Next() {
		var rec store.ReadingRecord
		if err := rows.Scan(&rec.ResourceID, &rec.Timestamp, &rec.Value, &rec.Unit); err != nil {
			return nil, err
		}
		rec.Timestamp = rec.Timestamp.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
