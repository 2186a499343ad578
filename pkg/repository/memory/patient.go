package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

type patientRepository struct {
	st *store
}

func copyPatient(p *model.Patient) *model.Patient {
	copied := *p
	return &copied
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.patients[patient.ID]; exists {
		return nil, goerr.Wrap(model.ErrDuplicate, "patient already exists", goerr.V(model.PatientIDKey, patient.ID))
	}

	created := copyPatient(patient)
	created.CreatedAt = r.st.now()
	r.st.patients[created.ID] = created
	return copyPatient(created), nil
}

func (r *patientRepository) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	p, exists := r.st.patients[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, id))
	}
	return copyPatient(p), nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	patients := make([]*model.Patient, 0, len(r.st.patients))
	for _, p := range r.st.patients {
		patients = append(patients, copyPatient(p))
	}

	sort.Slice(patients, func(i, j int) bool {
		if patients[i].Name != patients[j].Name {
			return patients[i].Name < patients[j].Name
		}
		return patients[i].ID < patients[j].ID
	})
	return patients, nil
}
