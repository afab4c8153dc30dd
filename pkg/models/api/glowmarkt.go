package api

import "encoding/json"

// Wire types for the Glowmarkt v0-1 API. Field names follow the server's
// JSON exactly.

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Valid bool   `json:"valid"`
	Token string `json:"token"`
}

type VirtualEntity struct {
	VeID string `json:"veId"`
	Name string `json:"name"`
}

type VirtualEntityResources struct {
	VeID      string     `json:"veId"`
	Resources []Resource `json:"resources"`
}

type Resource struct {
	ResourceID string `json:"resourceId"`
	Name       string `json:"name"`
	Classifier string `json:"classifier"`
	BaseUnit   string `json:"baseUnit"`
}

// ReadingPair is one [timestamp, value] element of a readings response. The
// timestamp is epoch seconds or milliseconds; the value is null when the
// bucket holds no data. Elements stay raw so malformed entries are rejected
// during normalization rather than silently coerced here.
type ReadingPair []json.RawMessage

type ReadingsQuery struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Period   string `json:"period"`
	Offset   int    `json:"offset"`
	Function string `json:"function"`
}

// ReadingsResponse carries the series under "data" on current deployments
// and under "readings" on older ones.
type ReadingsResponse struct {
	Status   string        `json:"status"`
	Data     []ReadingPair `json:"data"`
	Readings []ReadingPair `json:"readings"`
	Units    string        `json:"units"`
	Query    ReadingsQuery `json:"query"`
}

func (r ReadingsResponse) Pairs() []ReadingPair {
	if len(r.Data) > 0 {
		return r.Data
	}
	return r.Readings
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e ErrorResponse) Text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
