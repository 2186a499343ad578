package model

import "time"

// Conversation is one consultation about a patient, bracketed by start and end.
// Summary stays empty until the consultation is closed and is set exactly once.
type Conversation struct {
	ID             int64
	PatientID      PatientID
	ChiefComplaint string
	Summary        string
	CreatedAt      time.Time
}

// Closed reports whether the end-of-visit summary has been recorded
func (c *Conversation) Closed() bool {
	return c.Summary != ""
}
