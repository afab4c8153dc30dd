package store

import "time"

type ReadingStats struct {
	RecordsCount    int64
	FirstRecordTime *time.Time
	LastRecordTime  *time.Time
}

type ReadingRecord struct {
	ResourceID string
	Timestamp  time.Time
	Value      float64
	Unit       string
}

type ResourceRecord struct {
	ResourceID string
	EntityID   string
	Name       string
	Classifier string
	BaseUnit   string
}

type DailyReadingAggregate struct {
	Date       time.Time
	ResourceID string
	Total      float64
	Count      int64
	Unit       string
}
