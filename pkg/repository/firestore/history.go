package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type historyRepository struct {
	client *firestore.Client
	names  *collections
}

func (r *historyRepository) ListVisits(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Visit, error) {
	if limit <= 0 {
		limit = model.DefaultVisitLimit
	}

	iter := r.client.Collection(r.names.history()).
		Where("patient_id", "==", patientID.String()).
		OrderBy("visit_date", firestore.Asc).
		OrderBy("conversation_id", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var visits []*model.Visit
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate history", goerr.V(model.PatientIDKey, patientID))
		}

		var doc historyDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode history entry", goerr.V("path", snap.Ref.Path))
		}
		visits = append(visits, doc.toVisit())
	}

	return visits, nil
}

func (r *historyRepository) ListByConversation(ctx context.Context, conversationID int64) ([]*model.HistoryEntry, error) {
	iter := r.client.Collection(r.names.history()).
		Where("conversation_id", "==", conversationID).
		Documents(ctx)
	defer iter.Stop()

	var entries []*model.HistoryEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate history", goerr.V(model.ConversationIDKey, conversationID))
		}

		var doc historyDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode history entry", goerr.V("path", snap.Ref.Path))
		}
		entries = append(entries, doc.toEntry())
	}
	return entries, nil
}
