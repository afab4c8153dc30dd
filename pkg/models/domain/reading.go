package domain

import (
	"fmt"
	"time"
)

// TimeRange is a half-open request window [From, To) expressed in UTC, with
// the aggregation bucket width the server should apply.
type TimeRange struct {
	From   time.Time
	To     time.Time
	Period time.Duration
}

func (tr TimeRange) Validate() error {
	if !tr.From.Before(tr.To) {
		return fmt.Errorf("invalid range: from %s is not before to %s",
			tr.From.Format(time.RFC3339), tr.To.Format(time.RFC3339))
	}
	if tr.Period <= 0 {
		return fmt.Errorf("invalid range: period %s is not positive", tr.Period)
	}
	return nil
}

func (tr TimeRange) Span() time.Duration {
	return tr.To.Sub(tr.From)
}

func (tr TimeRange) String() string {
	return fmt.Sprintf("%s..%s", tr.From.Format("2006-01-02T15:04"), tr.To.Format("2006-01-02T15:04"))
}

// Reading is one normalized measurement: a UTC bucket start and the value
// recorded for that bucket.
type Reading struct {
	ResourceID string
	Timestamp  time.Time
	Value      float64
	Unit       string
}

// FailedRange records a sub-range that never produced data and the terminal
// error that stopped it.
type FailedRange struct {
	Range TimeRange
	Err   error
}

// FetchOutcome summarizes a windowed retrieval after all retries have run.
// Succeeded and Failed partition the requested chunks; together they cover
// the full window.
type FetchOutcome struct {
	ResourceID string
	Succeeded  []TimeRange
	Failed     []FailedRange
}

func (o FetchOutcome) Complete() bool {
	return len(o.Failed) == 0
}
