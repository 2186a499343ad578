package interfaces

import (
	"context"

	"github.com/medassist-dev/medassist/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	Patient() PatientRepository
	Conversation() ConversationRepository
	Message() MessageRepository
	History() HistoryRepository

	// CloseConversation records the end-of-visit summary on the conversation and inserts
	// the history entry as one atomic unit. Either both become visible or neither does.
	// Returns model.ErrNotFound for an unknown conversation and model.ErrConversationClosed
	// when a summary was already recorded.
	CloseConversation(ctx context.Context, conversationID int64, summary string, entry *model.HistoryEntry) (*model.HistoryEntry, error)

	// ClearAll deletes every patient, conversation, message and history entry in one transaction
	ClearAll(ctx context.Context) error

	// ClearPatient deletes a patient with all of its conversations, messages and history
	// entries in one transaction. Returns model.ErrNotFound for an unknown patient.
	ClearPatient(ctx context.Context, patientID model.PatientID) error

	Close() error
}
