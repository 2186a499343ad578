package model

import (
	"time"

	"github.com/medassist-dev/medassist/pkg/domain/types"
)

// Message is a single append-only utterance in a conversation
type Message struct {
	ID             int64
	ConversationID int64
	Role           types.MessageRole
	Content        string
	CreatedAt      time.Time
}
