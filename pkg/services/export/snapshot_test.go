package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

func rawResponse(t *testing.T, pairs ...string) *api.ReadingsResponse {
	t.Helper()

	resp := &api.ReadingsResponse{Status: "OK", Units: "kWh"}
	for _, raw := range pairs {
		var pair api.ReadingPair
		require.NoError(t, json.Unmarshal([]byte(raw), &pair))
		resp.Data = append(resp.Data, pair)
	}
	return resp
}

func TestSnapshotCollector(t *testing.T) {
	resource := domain.Resource{
		ID:         "res-1",
		Name:       "Gas Consumption",
		Classifier: "gas.consumption",
		BaseUnit:   "kWh",
	}
	window := domain.TimeRange{
		From:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Period: 30 * time.Minute,
	}

	t.Run("flush writes the collected payloads as one file", func(t *testing.T) {
		dir := t.TempDir()
		collector := NewSnapshotCollector(dir)

		ctx := context.Background()
		require.NoError(t, collector.Collect(ctx, resource, window, rawResponse(t,
			`[1709251200, 0.125]`, `[1709253000, null]`)))
		require.NoError(t, collector.Collect(ctx, resource, window, rawResponse(t,
			`[1709254800, 0.5]`)))

		path, err := collector.Flush(resource, window)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "gas_consumption_20240301_to_20240304.json"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var snapshot map[string]any
		require.NoError(t, json.Unmarshal(data, &snapshot))
		assert.Equal(t, "res-1", snapshot["resource_id"])
		assert.Equal(t, "Gas Consumption", snapshot["resource_name"])
		assert.Equal(t, "kWh", snapshot["resource_unit"])
		assert.Equal(t, "gas.consumption", snapshot["resource_classifier"])
		assert.Equal(t, "2024-03-01T00:00:00", snapshot["start_date"])
		assert.Equal(t, "2024-03-04T00:00:00", snapshot["end_date"])
		assert.Equal(t, "PT30M", snapshot["period"])
		assert.Equal(t, float64(0), snapshot["timezone_offset"])

		readings, ok := snapshot["readings"].([]any)
		require.True(t, ok)
		require.Len(t, readings, 3)
		// Null buckets survive untouched; normalization policy does not apply
		// to raw captures.
		second, ok := readings[1].([]any)
		require.True(t, ok)
		assert.Nil(t, second[1])
	})

	t.Run("flush without payloads writes nothing", func(t *testing.T) {
		collector := NewSnapshotCollector(t.TempDir())

		path, err := collector.Flush(resource, window)
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("flush forgets the resource", func(t *testing.T) {
		dir := t.TempDir()
		collector := NewSnapshotCollector(dir)

		ctx := context.Background()
		require.NoError(t, collector.Collect(ctx, resource, window, rawResponse(t, `[1709251200, 0.125]`)))

		first, err := collector.Flush(resource, window)
		require.NoError(t, err)
		require.NotEmpty(t, first)

		second, err := collector.Flush(resource, window)
		require.NoError(t, err)
		assert.Empty(t, second)
	})
}
