package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxTransactionWrites is the Firestore limit on writes committed by one transaction
const maxTransactionWrites = 500

// clearPasses bounds how often a batched clear re-scans for documents written meanwhile
const clearPasses = 3

var (
	errTooManyWrites   = goerr.New("clear exceeds one transaction")
	errClearIncomplete = goerr.New("documents remained after clearing")
)

// ClearAll removes every document of the repository. Stores small enough for
// one transaction are cleared atomically. Larger stores are deleted in
// transactions of at most maxTransactionWrites documents, children before
// parents, and re-scanned until empty; a failure part way leaves a state
// that a repeated ClearAll finishes.
func (f *Firestore) ClearAll(ctx context.Context) error {
	queries := []firestore.Query{
		f.client.Collection(f.names.history()).Query,
		f.client.Collection(f.names.messages()).Query,
		f.client.Collection(f.names.conversations()).Query,
		f.client.Collection(f.names.patients()).Query,
	}

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var refs []*firestore.DocumentRef
		for _, q := range queries {
			snaps, err := tx.Documents(q.Limit(maxTransactionWrites + 1)).GetAll()
			if err != nil {
				return goerr.Wrap(err, "failed to read collection")
			}
			for _, snap := range snaps {
				refs = append(refs, snap.Ref)
			}
			if len(refs) > maxTransactionWrites {
				return errTooManyWrites
			}
		}
		return deleteRefs(tx, refs)
	})
	if errors.Is(err, errTooManyWrites) {
		err = f.clearInBatches(ctx, queries, nil)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to clear all data")
	}
	return nil
}

// ClearPatient removes a patient with their conversations, messages and
// history, with the same batching rules as ClearAll. The patient document
// goes last, so an interrupted clear can be repeated.
func (f *Firestore) ClearPatient(ctx context.Context, patientID model.PatientID) error {
	patientRef := f.client.Collection(f.names.patients()).Doc(patientID.String())

	var queries []firestore.Query
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		queries = nil
		if _, err := tx.Get(patientRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, patientID))
			}
			return goerr.Wrap(err, "failed to get patient", goerr.V(model.PatientIDKey, patientID))
		}

		// Firestore transactions require every read before the first write
		convQuery := f.client.Collection(f.names.conversations()).Where("patient_id", "==", patientID.String())
		convSnaps, err := tx.Documents(convQuery).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to read conversations", goerr.V(model.PatientIDKey, patientID))
		}

		for _, convSnap := range convSnaps {
			var conv conversationDoc
			if err := convSnap.DataTo(&conv); err != nil {
				return goerr.Wrap(err, "failed to decode conversation", goerr.V("path", convSnap.Ref.Path))
			}
			queries = append(queries, f.client.Collection(f.names.messages()).Where("conversation_id", "==", conv.ID))
		}
		queries = append(queries,
			f.client.Collection(f.names.history()).Where("patient_id", "==", patientID.String()),
			convQuery,
		)

		var refs []*firestore.DocumentRef
		for _, q := range queries[:len(queries)-1] {
			snaps, err := tx.Documents(q.Limit(maxTransactionWrites + 1)).GetAll()
			if err != nil {
				return goerr.Wrap(err, "failed to read patient records", goerr.V(model.PatientIDKey, patientID))
			}
			for _, snap := range snaps {
				refs = append(refs, snap.Ref)
			}
			if len(refs) > maxTransactionWrites {
				return errTooManyWrites
			}
		}
		for _, snap := range convSnaps {
			refs = append(refs, snap.Ref)
		}
		refs = append(refs, patientRef)
		if len(refs) > maxTransactionWrites {
			return errTooManyWrites
		}

		return deleteRefs(tx, refs)
	})
	if errors.Is(err, errTooManyWrites) {
		err = f.clearInBatches(ctx, queries, patientRef)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to clear patient data", goerr.V(model.PatientIDKey, patientID))
	}
	return nil
}

// clearInBatches drains every query in order, then deletes last when given.
// Queries are re-checked afterwards because documents may be written while
// later collections drain.
func (f *Firestore) clearInBatches(ctx context.Context, queries []firestore.Query, last *firestore.DocumentRef) error {
	for range clearPasses {
		for _, q := range queries {
			if err := f.drain(ctx, q); err != nil {
				return err
			}
		}

		remaining, err := f.anyRemaining(ctx, queries)
		if err != nil {
			return err
		}
		if remaining {
			continue
		}

		if last != nil {
			if _, err := last.Delete(ctx); err != nil {
				return goerr.Wrap(err, "failed to delete document", goerr.V("path", last.Path))
			}
		}
		return nil
	}

	return goerr.Wrap(errClearIncomplete, "clear did not converge", goerr.V("passes", clearPasses))
}

func (f *Firestore) drain(ctx context.Context, q firestore.Query) error {
	for {
		var deleted int
		err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			snaps, err := tx.Documents(q.Limit(maxTransactionWrites)).GetAll()
			if err != nil {
				return goerr.Wrap(err, "failed to read documents")
			}
			refs := make([]*firestore.DocumentRef, len(snaps))
			for i, snap := range snaps {
				refs[i] = snap.Ref
			}
			deleted = len(refs)
			return deleteRefs(tx, refs)
		})
		if err != nil {
			return err
		}
		if deleted < maxTransactionWrites {
			return nil
		}
	}
}

func (f *Firestore) anyRemaining(ctx context.Context, queries []firestore.Query) (bool, error) {
	for _, q := range queries {
		snaps, err := q.Limit(1).Documents(ctx).GetAll()
		if err != nil {
			return false, goerr.Wrap(err, "failed to re-check documents")
		}
		if len(snaps) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func deleteRefs(tx *firestore.Transaction, refs []*firestore.DocumentRef) error {
	for _, ref := range refs {
		if err := tx.Delete(ref); err != nil {
			return goerr.Wrap(err, "failed to delete document", goerr.V("path", ref.Path))
		}
	}
	return nil
}
