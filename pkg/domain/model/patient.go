package model

import (
	"strings"
	"time"
)

// PatientID is the externally assigned identifier of a patient, e.g. a chart number
type PatientID string

func (x PatientID) String() string {
	return string(x)
}

// Normalize trims surrounding whitespace
func (x PatientID) Normalize() PatientID {
	return PatientID(strings.TrimSpace(string(x)))
}

// Patient is a registered patient. It is never updated; only deleted.
type Patient struct {
	ID        PatientID
	Name      string
	Age       int
	Gender    string
	CreatedAt time.Time
}
