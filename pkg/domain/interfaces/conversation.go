package interfaces

import (
	"context"

	"github.com/medassist-dev/medassist/pkg/domain/model"
)

// ConversationRepository defines the interface for conversation persistence
type ConversationRepository interface {
	// Create opens a conversation with an auto-assigned ID.
	// Returns model.ErrNotFound if the patient does not exist.
	Create(ctx context.Context, patientID model.PatientID, chiefComplaint string) (*model.Conversation, error)

	// Get retrieves a conversation by ID. Returns model.ErrNotFound if absent.
	Get(ctx context.Context, id int64) (*model.Conversation, error)

	// ListByPatient returns the conversations of a patient, oldest first
	ListByPatient(ctx context.Context, patientID model.PatientID) ([]*model.Conversation, error)
}
