package rdb

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"gorm.io/gorm"
)

type historyRepository struct {
	db *gorm.DB
}

func (r *historyRepository) ListVisits(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Visit, error) {
	if limit <= 0 {
		limit = model.DefaultVisitLimit
	}

	var rows []visitRow
	err := r.db.WithContext(ctx).
		Table(conversationsTable+" AS c").
		Select("c.conversation_id, c.session_date, c.chief_complaint, c.summary, h.symptoms, h.diagnoses_considered").
		Joins("JOIN "+historyTable+" AS h ON h.conversation_id = c.conversation_id").
		Where("c.patient_id = ?", patientID.String()).
		Order("c.session_date ASC, c.conversation_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list visits", goerr.V(model.PatientIDKey, patientID))
	}

	visits := make([]*model.Visit, len(rows))
	for i := range rows {
		visits[i] = rows[i].toModel()
	}
	return visits, nil
}

func (r *historyRepository) ListByConversation(ctx context.Context, conversationID int64) ([]*model.HistoryEntry, error) {
	var rows []historyRow
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list history entries", goerr.V(model.ConversationIDKey, conversationID))
	}

	entries := make([]*model.HistoryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toModel()
	}
	return entries, nil
}
