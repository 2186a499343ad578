package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrPatientNotFound      = errors.New("patient not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSessionNotFound      = errors.New("session not found")

	// Registration errors
	ErrDuplicatePatient = errors.New("patient already registered")
	ErrInvalidPatient   = errors.New("invalid patient data")

	// Consultation state errors
	ErrConsultationInProgress = errors.New("a consultation is already in progress")
	ErrNoActiveConsultation   = errors.New("no active consultation")
	ErrNotSummarizing         = errors.New("consultation is not being summarized")
	ErrTurnInFlight           = errors.New("another request is in flight for this consultation")

	// Input errors
	ErrEmptyMessage        = errors.New("message is empty")
	ErrEmptyChiefComplaint = errors.New("chief complaint is empty")
	ErrEmptySummaryField   = errors.New("summary, symptoms and diagnoses are all required")
)

// Context keys for error values
const (
	PatientIDKey      = "patient_id"
	ConversationIDKey = "conversation_id"
	SessionIDKey      = "session_id"
	StateKey          = "state"
)
