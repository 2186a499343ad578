package rdb

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func (r *messageRepository) Append(ctx context.Context, conversationID int64, role types.MessageRole, content string) (*model.Message, error) {
	row := &messageRow{
		ConversationID: conversationID,
		Role:           role.String(),
		Content:        content,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&conversationRow{}).Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
			return goerr.Wrap(err, "failed to look up conversation", goerr.V(model.ConversationIDKey, conversationID))
		}
		if count == 0 {
			return goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, conversationID))
		}

		// Keep timestamps strictly increasing within the conversation
		ts := now()
		var last []messageRow
		err := tx.Where("conversation_id = ?", conversationID).
			Order("message_id DESC").
			Limit(1).
			Find(&last).Error
		if err != nil {
			return goerr.Wrap(err, "failed to get last message", goerr.V(model.ConversationIDKey, conversationID))
		}
		if len(last) > 0 && !ts.After(last[0].Timestamp) {
			ts = last[0].Timestamp.UTC().Add(time.Microsecond)
		}
		row.Timestamp = ts

		if err := tx.Create(row).Error; err != nil {
			return goerr.Wrap(err, "failed to insert message", goerr.V(model.ConversationIDKey, conversationID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

func (r *messageRepository) List(ctx context.Context, conversationID int64) ([]*model.Message, error) {
	var rows []messageRow
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("message_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(model.ConversationIDKey, conversationID))
	}

	msgs := make([]*model.Message, len(rows))
	for i := range rows {
		msgs[i] = rows[i].toModel()
	}
	return msgs, nil
}
