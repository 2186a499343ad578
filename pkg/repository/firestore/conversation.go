package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type conversationRepository struct {
	client *firestore.Client
	names  *collections
	nextID func(ctx context.Context, counterDoc string) (int64, error)
}

func (r *conversationRepository) Create(ctx context.Context, patientID model.PatientID, chiefComplaint string) (*model.Conversation, error) {
	id, err := r.nextID(ctx, conversationCounterDoc)
	if err != nil {
		return nil, err
	}

	ts := now()
	doc := &conversationDoc{
		ID:             id,
		PatientID:      patientID.String(),
		ChiefComplaint: chiefComplaint,
		CreatedAt:      ts,
		LastMessageAt:  ts,
	}

	patientRef := r.client.Collection(r.names.patients()).Doc(patientID.String())
	convRef := r.client.Collection(r.names.conversations()).Doc(intDocID(id))

	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(patientRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, patientID))
			}
			return goerr.Wrap(err, "failed to get patient", goerr.V(model.PatientIDKey, patientID))
		}
		return tx.Create(convRef, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation", goerr.V(model.PatientIDKey, patientID))
	}

	return doc.toModel(), nil
}

func (r *conversationRepository) Get(ctx context.Context, id int64) (*model.Conversation, error) {
	snap, err := r.client.Collection(r.names.conversations()).Doc(intDocID(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V(model.ConversationIDKey, id))
	}

	var doc conversationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V(model.ConversationIDKey, id))
	}
	return doc.toModel(), nil
}

func (r *conversationRepository) ListByPatient(ctx context.Context, patientID model.PatientID) ([]*model.Conversation, error) {
	iter := r.client.Collection(r.names.conversations()).
		Where("patient_id", "==", patientID.String()).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var convs []*model.Conversation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversations", goerr.V(model.PatientIDKey, patientID))
		}

		var doc conversationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("path", snap.Ref.Path))
		}
		convs = append(convs, doc.toModel())
	}
	return convs, nil
}
