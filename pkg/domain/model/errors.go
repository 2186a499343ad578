package model

import "github.com/m-mizutani/goerr/v2"

// Store and service errors shared by every backend
var (
	ErrNotFound           = goerr.New("entity not found")
	ErrDuplicate          = goerr.New("entity already exists")
	ErrConversationClosed = goerr.New("conversation already closed")
	ErrLLMUnavailable     = goerr.New("language model service unavailable")
)

// Context keys for error values
const (
	PatientIDKey      = "patient_id"
	ConversationIDKey = "conversation_id"
)
