package memory

import (
	"context"
	"sort"

	"github.com/medassist-dev/medassist/pkg/domain/model"
)

type historyRepository struct {
	st *store
}

func copyHistoryEntry(h *model.HistoryEntry) *model.HistoryEntry {
	copied := *h
	return &copied
}

func (r *historyRepository) ListVisits(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Visit, error) {
	if limit <= 0 {
		limit = model.DefaultVisitLimit
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	entries := make(map[int64]*model.HistoryEntry)
	for _, h := range r.st.history {
		if h.PatientID == patientID {
			entries[h.ConversationID] = h
		}
	}

	var convs []*model.Conversation
	for _, c := range r.st.conversations {
		if c.PatientID != patientID || !c.Closed() {
			continue
		}
		if _, ok := entries[c.ID]; ok {
			convs = append(convs, c)
		}
	}
	sortConversations(convs)

	if len(convs) > limit {
		convs = convs[:limit]
	}

	visits := make([]*model.Visit, 0, len(convs))
	for _, c := range convs {
		h := entries[c.ID]
		visits = append(visits, &model.Visit{
			ConversationID: c.ID,
			Date:           c.CreatedAt,
			ChiefComplaint: c.ChiefComplaint,
			Summary:        c.Summary,
			Symptoms:       h.Symptoms,
			Diagnoses:      h.Diagnoses,
		})
	}
	return visits, nil
}

func (r *historyRepository) ListByConversation(ctx context.Context, conversationID int64) ([]*model.HistoryEntry, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var entries []*model.HistoryEntry
	for _, h := range r.st.history {
		if h.ConversationID == conversationID {
			entries = append(entries, copyHistoryEntry(h))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
