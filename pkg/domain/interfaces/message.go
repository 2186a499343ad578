package interfaces

import (
	"context"

	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
)

// MessageRepository defines the interface for append-only message persistence
type MessageRepository interface {
	// Append adds a message to a conversation with an auto-assigned ID and timestamp.
	// Returns model.ErrNotFound if the conversation does not exist.
	Append(ctx context.Context, conversationID int64, role types.MessageRole, content string) (*model.Message, error)

	// List returns the messages of a conversation in chronological order
	List(ctx context.Context, conversationID int64) ([]*model.Message, error)
}
