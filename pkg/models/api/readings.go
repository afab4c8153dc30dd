package api

// Reading is the external record shape shared by the JSONL export and the
// archive HTTP API. TimestampUTC is ISO-8601 with a Z suffix.
type Reading struct {
	ResourceID   string  `json:"resourceId"`
	TimestampUTC string  `json:"timestampUTC"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
}

type DailyTotal struct {
	Date             string  `json:"date"`
	ConsumptionTotal float64 `json:"consumptionTotal"`
	ReadingCount     int     `json:"readingCount"`
}

// ArchivedResource describes one stored series and the span it covers.
type ArchivedResource struct {
	ResourceID   string `json:"resourceId"`
	EntityID     string `json:"entityId,omitempty"`
	Name         string `json:"name,omitempty"`
	Classifier   string `json:"classifier,omitempty"`
	BaseUnit     string `json:"baseUnit,omitempty"`
	ReadingCount int    `json:"readingCount"`
	FirstReading string `json:"firstReading,omitempty"`
	LastReading  string `json:"lastReading,omitempty"`
}
