package rdb

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

func (r *conversationRepository) Create(ctx context.Context, patientID model.PatientID, chiefComplaint string) (*model.Conversation, error) {
	row := &conversationRow{
		PatientID:      patientID.String(),
		SessionDate:    now(),
		ChiefComplaint: chiefComplaint,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&patientRow{}).Where("patient_id = ?", row.PatientID).Count(&count).Error; err != nil {
			return goerr.Wrap(err, "failed to look up patient", goerr.V(model.PatientIDKey, patientID))
		}
		if count == 0 {
			return goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, patientID))
		}

		if err := tx.Create(row).Error; err != nil {
			return goerr.Wrap(err, "failed to insert conversation", goerr.V(model.PatientIDKey, patientID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

func (r *conversationRepository) Get(ctx context.Context, id int64) (*model.Conversation, error) {
	var row conversationRow
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", id).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V(model.ConversationIDKey, id))
	}
	return row.toModel(), nil
}

func (r *conversationRepository) ListByPatient(ctx context.Context, patientID model.PatientID) ([]*model.Conversation, error) {
	var rows []conversationRow
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID.String()).
		Order("session_date ASC, conversation_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations", goerr.V(model.PatientIDKey, patientID))
	}

	convs := make([]*model.Conversation, len(rows))
	for i := range rows {
		convs[i] = rows[i].toModel()
	}
	return convs, nil
}
