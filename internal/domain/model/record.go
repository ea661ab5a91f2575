package model

// Submission is a parsed ingest envelope. Absent identity fields default to
// "unknown" rather than failing the request.
type Submission struct {
	UserID     string
	DriverID   string
	DeviceType string
	Timestamp  string
	Health     Sample
}

// Record is the persisted risk assessment. Records are append-only: one per
// ingest, never mutated; retention is the store's concern.
type Record struct {
	RecordID  string `json:"record_id"`
	UserID    string `json:"short_user_id"`
	Timestamp string `json:"ts"`
	DriverID  string `json:"driver_id"`
	Risk      Label  `json:"risk"`
	Health    Sample `json:"health_data"`
}
