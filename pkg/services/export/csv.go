package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

type csvEncoder struct{}

func (csvEncoder) Encode(w io.Writer, readings []domain.Reading) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"resourceId", "timestampUTC", "value", "unit"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range readings {
		row := []string{
			r.ResourceID,
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			r.Unit,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
