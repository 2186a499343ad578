package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntryID is a UUID-based identifier for HistoryEntry
type HistoryEntryID string

// NewHistoryEntryID generates a new UUID v4 HistoryEntryID
func NewHistoryEntryID() HistoryEntryID {
	return HistoryEntryID(uuid.New().String())
}

func (x HistoryEntryID) String() string {
	return string(x)
}

// HistoryEntry is the symptom and diagnosis distillate of a closed conversation.
// Symptoms and Diagnoses are free text, usually comma separated terms.
type HistoryEntry struct {
	ID             HistoryEntryID
	PatientID      PatientID
	ConversationID int64
	Symptoms       string
	Diagnoses      string
	CreatedAt      time.Time
}

// Visit is a closed conversation joined with its history entry.
// Date is the time the conversation started.
type Visit struct {
	ConversationID int64
	Date           time.Time
	ChiefComplaint string
	Summary        string
	Symptoms       string
	Diagnoses      string
}

// DefaultVisitLimit is the number of past visits used when no limit is given
const DefaultVisitLimit = 5
