package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
)

type messageRepository struct {
	st *store
}

func copyMessage(m *model.Message) *model.Message {
	copied := *m
	return &copied
}

func (r *messageRepository) Append(ctx context.Context, conversationID int64, role types.MessageRole, content string) (*model.Message, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.conversations[conversationID]; !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, conversationID))
	}

	created := &model.Message{
		ID:             r.st.nextMessageID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      r.st.now(),
	}
	r.st.nextMessageID++

	r.st.messages[conversationID] = append(r.st.messages[conversationID], created)
	return copyMessage(created), nil
}

func (r *messageRepository) List(ctx context.Context, conversationID int64) ([]*model.Message, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	src := r.st.messages[conversationID]
	msgs := make([]*model.Message, len(src))
	for i, m := range src {
		msgs[i] = copyMessage(m)
	}
	return msgs, nil
}
