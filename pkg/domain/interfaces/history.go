package interfaces

import (
	"context"

	"github.com/medassist-dev/medassist/pkg/domain/model"
)

// HistoryRepository defines the read side of visit history.
// History entries are only written through Repository.CloseConversation.
type HistoryRepository interface {
	// ListVisits returns the closed visits of a patient in ascending chronological
	// order, capped at the first limit. limit <= 0 means model.DefaultVisitLimit.
	ListVisits(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Visit, error)

	// ListByConversation returns history entries recorded for a conversation
	ListByConversation(ctx context.Context, conversationID int64) ([]*model.HistoryEntry, error)
}
