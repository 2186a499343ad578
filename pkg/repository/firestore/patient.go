package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type patientRepository struct {
	client *firestore.Client
	names  *collections
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	doc := &patientDoc{
		ID:        patient.ID.String(),
		Name:      patient.Name,
		Age:       int64(patient.Age),
		Gender:    patient.Gender,
		CreatedAt: now(),
	}

	ref := r.client.Collection(r.names.patients()).Doc(doc.ID)
	if _, err := ref.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrDuplicate, "patient already exists", goerr.V(model.PatientIDKey, patient.ID))
		}
		return nil, goerr.Wrap(err, "failed to create patient", goerr.V(model.PatientIDKey, patient.ID))
	}

	return doc.toModel(), nil
}

func (r *patientRepository) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	snap, err := r.client.Collection(r.names.patients()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V(model.PatientIDKey, id))
	}

	var doc patientDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode patient", goerr.V(model.PatientIDKey, id))
	}
	return doc.toModel(), nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	iter := r.client.Collection(r.names.patients()).Documents(ctx)
	defer iter.Stop()

	var patients []*model.Patient
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate patients")
		}

		var doc patientDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode patient", goerr.V("path", snap.Ref.Path))
		}
		patients = append(patients, doc.toModel())
	}

	sort.Slice(patients, func(i, j int) bool {
		if patients[i].Name != patients[j].Name {
			return patients[i].Name < patients[j].Name
		}
		return patients[i].ID < patients[j].ID
	})
	return patients, nil
}
