package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/energy-tools/glow-atlas/pkg/adapters"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

// jsonlEncoder writes one JSON object per line: resourceId, timestampUTC,
// value, unit. This is the canonical sink format of the pipeline.
type jsonlEncoder struct{}

func (jsonlEncoder) Encode(w io.Writer, readings []domain.Reading) error {
	enc := json.NewEncoder(w)
	for _, r := range readings {
		if err := enc.Encode(adapters.MapDomainReadingToApi(r)); err != nil {
			return fmt.Errorf("encoding reading: %w", err)
		}
	}
	return nil
}

// EncodeDailyTotals writes day-level sums as JSON lines, one day per line.
func EncodeDailyTotals(w io.Writer, totals []domain.DailyTotal) error {
	enc := json.NewEncoder(w)
	for _, d := range totals {
		if err := enc.Encode(adapters.MapDomainDailyTotalToApi(d)); err != nil {
			return fmt.Errorf("encoding daily total: %w", err)
		}
	}
	return nil
}
