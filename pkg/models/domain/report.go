package domain

import "time"

// FetchReport is what a retrieval run hands to the console reporter once a
// resource has been pulled, normalized and written out.
type FetchReport struct {
	Resource Resource
	Range    TimeRange
	Outcome  FetchOutcome
	Records  int
	Skipped  int
	Elapsed  time.Duration
}

// DailyTotal is one day of summed consumption, used by reports and by the
// daily export.
type DailyTotal struct {
	Date  time.Time
	Total float64
	Count int
	Unit  string
}
