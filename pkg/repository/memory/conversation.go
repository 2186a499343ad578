package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

type conversationRepository struct {
	st *store
}

func copyConversation(c *model.Conversation) *model.Conversation {
	copied := *c
	return &copied
}

func (r *conversationRepository) Create(ctx context.Context, patientID model.PatientID, chiefComplaint string) (*model.Conversation, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.patients[patientID]; !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, patientID))
	}

	created := &model.Conversation{
		ID:             r.st.nextConversationID,
		PatientID:      patientID,
		ChiefComplaint: chiefComplaint,
		CreatedAt:      r.st.now(),
	}
	r.st.nextConversationID++

	r.st.conversations[created.ID] = created
	return copyConversation(created), nil
}

func (r *conversationRepository) Get(ctx context.Context, id int64) (*model.Conversation, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	c, exists := r.st.conversations[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, id))
	}
	return copyConversation(c), nil
}

func (r *conversationRepository) ListByPatient(ctx context.Context, patientID model.PatientID) ([]*model.Conversation, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var convs []*model.Conversation
	for _, c := range r.st.conversations {
		if c.PatientID == patientID {
			convs = append(convs, copyConversation(c))
		}
	}

	sortConversations(convs)
	return convs, nil
}

func sortConversations(convs []*model.Conversation) {
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].CreatedAt.Equal(convs[j].CreatedAt) {
			return convs[i].CreatedAt.Before(convs[j].CreatedAt)
		}
		return convs[i].ID < convs[j].ID
	})
}
