package interfaces

import (
	"context"

	"github.com/medassist-dev/medassist/pkg/domain/model"
)

// PatientRepository defines the interface for patient persistence
type PatientRepository interface {
	// Create registers a patient. CreatedAt is assigned by the repository.
	// Returns model.ErrDuplicate when the ID is already used; nothing is written in that case.
	Create(ctx context.Context, patient *model.Patient) (*model.Patient, error)

	// Get retrieves a patient by ID. Returns model.ErrNotFound if absent.
	Get(ctx context.Context, id model.PatientID) (*model.Patient, error)

	// List returns all patients sorted by name, then ID
	List(ctx context.Context) ([]*model.Patient, error)
}
