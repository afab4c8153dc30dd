package store

import "time"

// FetchCheckpoint records how far a resource has been archived, so the next
// run can resume from the last fully stored bound.
type FetchCheckpoint struct {
	ResourceID    string
	LastFetchedTo time.Time
	UpdatedAt     time.Time
	LastError     *string
}
