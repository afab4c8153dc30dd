package readings

import (
	"fmt"
	"time"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

// SplitRange cuts a request window into contiguous sub-ranges of at most
// maxSpan each, oldest first. Sub-ranges touch without overlapping and their
// union is exactly the input window; the final one may be shorter than
// maxSpan.
func SplitRange(tr domain.TimeRange, maxSpan time.Duration) ([]domain.TimeRange, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	if maxSpan <= 0 {
		return nil, fmt.Errorf("invalid chunk span %s", maxSpan)
	}

	var chunks []domain.TimeRange
	for from := tr.From; from.Before(tr.To); {
		to := from.Add(maxSpan)
		if to.After(tr.To) {
			to = tr.To
		}
		chunks = append(chunks, domain.TimeRange{From: from, To: to, Period: tr.Period})
		from = to
	}

	return chunks, nil
}
