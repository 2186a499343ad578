package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type messageRepository struct {
	client *firestore.Client
	names  *collections
	nextID func(ctx context.Context, counterDoc string) (int64, error)
}

func (r *messageRepository) Append(ctx context.Context, conversationID int64, role types.MessageRole, content string) (*model.Message, error) {
	id, err := r.nextID(ctx, messageCounterDoc)
	if err != nil {
		return nil, err
	}

	convRef := r.client.Collection(r.names.conversations()).Doc(intDocID(conversationID))
	msgRef := r.client.Collection(r.names.messages()).Doc(intDocID(id))

	var created *messageDoc
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(convRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, conversationID))
			}
			return goerr.Wrap(err, "failed to get conversation", goerr.V(model.ConversationIDKey, conversationID))
		}

		var conv conversationDoc
		if err := snap.DataTo(&conv); err != nil {
			return goerr.Wrap(err, "failed to decode conversation", goerr.V(model.ConversationIDKey, conversationID))
		}

		// keep timestamps strictly increasing within a conversation
		ts := now()
		if !ts.After(conv.LastMessageAt) {
			ts = conv.LastMessageAt.Add(time.Microsecond)
		}

		created = &messageDoc{
			ID:             id,
			ConversationID: conversationID,
			Role:           role.String(),
			Content:        content,
			CreatedAt:      ts,
		}
		if err := tx.Update(convRef, []firestore.Update{{Path: "last_message_at", Value: ts}}); err != nil {
			return err
		}
		return tx.Create(msgRef, created)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append message", goerr.V(model.ConversationIDKey, conversationID))
	}

	return created.toModel(), nil
}

func (r *messageRepository) List(ctx context.Context, conversationID int64) ([]*model.Message, error) {
	iter := r.client.Collection(r.names.messages()).
		Where("conversation_id", "==", conversationID).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var messages []*model.Message
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages", goerr.V(model.ConversationIDKey, conversationID))
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message", goerr.V("path", snap.Ref.Path))
		}
		messages = append(messages, doc.toModel())
	}
	return messages, nil
}
