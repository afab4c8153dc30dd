// Package readings turns raw Glowmarkt series into canonical UTC records
// and orchestrates windowed retrieval with retries.
package readings

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

// epochMillisCutoff separates epoch seconds from epoch milliseconds. Values
// above it cannot be seconds for any plausible meter date.
const epochMillisCutoff = 9_999_999_999

// NormalizationError reports a readings entry the pipeline refuses to
// interpret. Sentinel nulls are not errors; shape violations are.
type NormalizationError struct {
	ResourceID string
	Index      int
	Reason     string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalizing readings for %s: entry %d: %s", e.ResourceID, e.Index, e.Reason)
}

// NormalizedSeries is the outcome of normalizing one response: canonical
// records sorted strictly ascending, plus the count of empty buckets the
// server reported as null.
type NormalizedSeries struct {
	Readings []domain.Reading
	Skipped  int
}

// Normalize converts a raw readings response into canonical records. Epochs
// become UTC timestamps regardless of the meter's local zone, null values
// are dropped, and duplicate buckets collapse to their first occurrence.
func Normalize(resource domain.Resource, resp *api.ReadingsResponse) (NormalizedSeries, error) {
	unit := resp.Units
	if unit == "" {
		unit = resource.BaseUnit
	}

	pairs := resp.Pairs()
	out := NormalizedSeries{Readings: make([]domain.Reading, 0, len(pairs))}

	for i, pair := range pairs {
		if len(pair) != 2 {
			return NormalizedSeries{}, &NormalizationError{
				ResourceID: resource.ID,
				Index:      i,
				Reason:     fmt.Sprintf("expected a [timestamp, value] pair, got %d elements", len(pair)),
			}
		}

		var epoch *float64
		if err := json.Unmarshal(pair[0], &epoch); err != nil || epoch == nil {
			return NormalizedSeries{}, &NormalizationError{
				ResourceID: resource.ID,
				Index:      i,
				Reason:     fmt.Sprintf("non-numeric timestamp %s", pair[0]),
			}
		}

		var value *float64
		if err := json.Unmarshal(pair[1], &value); err != nil {
			return NormalizedSeries{}, &NormalizationError{
				ResourceID: resource.ID,
				Index:      i,
				Reason:     fmt.Sprintf("non-numeric value %s", pair[1]),
			}
		}

		if value == nil {
			out.Skipped++
			continue
		}

		out.Readings = append(out.Readings, domain.Reading{
			ResourceID: resource.ID,
			Timestamp:  epochToUTC(*epoch),
			Value:      *value,
			Unit:       unit,
		})
	}

	out.Readings = sortAndDedupe(out.Readings)
	return out, nil
}

func epochToUTC(epoch float64) time.Time {
	if epoch > epochMillisCutoff {
		return time.UnixMilli(int64(epoch)).UTC()
	}
	return time.Unix(int64(epoch), 0).UTC()
}

// sortAndDedupe orders records by timestamp and keeps the first record of
// any duplicated bucket, so adjacent windows sharing a bound cannot double
// count.
func sortAndDedupe(readings []domain.Reading) []domain.Reading {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	deduped := readings[:0]
	for _, r := range readings {
		if len(deduped) > 0 && !deduped[len(deduped)-1].Timestamp.Before(r.Timestamp) {
			continue
		}
		deduped = append(deduped, r)
	}
	return deduped
}
