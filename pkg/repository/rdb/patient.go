package rdb

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"gorm.io/gorm"
)

type patientRepository struct {
	db *gorm.DB
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	row := &patientRow{
		PatientID: patient.ID.String(),
		Name:      patient.Name,
		Age:       patient.Age,
		Gender:    patient.Gender,
		CreatedAt: now(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&patientRow{}).Where("patient_id = ?", row.PatientID).Count(&count).Error; err != nil {
			return goerr.Wrap(err, "failed to look up patient", goerr.V(model.PatientIDKey, patient.ID))
		}
		if count > 0 {
			return goerr.Wrap(model.ErrDuplicate, "patient already exists", goerr.V(model.PatientIDKey, patient.ID))
		}

		if err := tx.Create(row).Error; err != nil {
			if isDuplicateKey(err) {
				return goerr.Wrap(model.ErrDuplicate, "patient already exists", goerr.V(model.PatientIDKey, patient.ID))
			}
			return goerr.Wrap(err, "failed to insert patient", goerr.V(model.PatientIDKey, patient.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

func (r *patientRepository) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	var row patientRow
	if err := r.db.WithContext(ctx).Where("patient_id = ?", id.String()).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V(model.PatientIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V(model.PatientIDKey, id))
	}
	return row.toModel(), nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	var rows []patientRow
	if err := r.db.WithContext(ctx).Order("name ASC, patient_id ASC").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list patients")
	}

	patients := make([]*model.Patient, len(rows))
	for i := range rows {
		patients[i] = rows[i].toModel()
	}
	return patients, nil
}
