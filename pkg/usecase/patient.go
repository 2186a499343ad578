package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
)

// RegisterPatientInput is the registration form of a patient
type RegisterPatientInput struct {
	ID     string `json:"patient_id" validate:"required,max=64,excludesall=/"`
	Name   string `json:"name" validate:"required,max=256"`
	Age    int    `json:"age" validate:"gte=0,lte=150"`
	Gender string `json:"gender" validate:"required,max=64"`
}

type PatientUseCase struct {
	repo     interfaces.Repository
	validate *validator.Validate
}

func NewPatientUseCase(repo interfaces.Repository) *PatientUseCase {
	return &PatientUseCase{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register validates and stores a new patient. A taken ID fails with
// ErrDuplicatePatient and leaves the existing record untouched.
func (uc *PatientUseCase) Register(ctx context.Context, input RegisterPatientInput) (*model.Patient, error) {
	input.ID = strings.TrimSpace(input.ID)
	input.Name = strings.TrimSpace(input.Name)
	input.Gender = strings.TrimSpace(input.Gender)

	if err := uc.validate.Struct(input); err != nil {
		return nil, goerr.Wrap(ErrInvalidPatient, "invalid patient registration",
			goerr.V(PatientIDKey, input.ID),
			goerr.V("reason", err.Error()))
	}

	patient, err := uc.repo.Patient().Create(ctx, &model.Patient{
		ID:     model.PatientID(input.ID),
		Name:   input.Name,
		Age:    input.Age,
		Gender: input.Gender,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, goerr.Wrap(errors.Join(ErrDuplicatePatient, err), "patient ID is taken", goerr.V(PatientIDKey, input.ID))
		}
		return nil, goerr.Wrap(err, "failed to register patient", goerr.V(PatientIDKey, input.ID))
	}

	logging.From(ctx).Info("Patient registered", "patient_id", patient.ID)
	logging.From(ctx).Debug("Patient details", "patient_id", patient.ID, "name", patient.Name)
	return patient, nil
}

func (uc *PatientUseCase) List(ctx context.Context) ([]*model.Patient, error) {
	patients, err := uc.repo.Patient().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patients")
	}
	return patients, nil
}

func (uc *PatientUseCase) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	id = id.Normalize()
	patient, err := uc.repo.Patient().Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrPatientNotFound, "patient not found", goerr.V(PatientIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V(PatientIDKey, id))
	}
	return patient, nil
}

// Visits returns the earliest closed visits up to limit, oldest first
func (uc *PatientUseCase) Visits(ctx context.Context, id model.PatientID, limit int) ([]*model.Visit, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}

	visits, err := uc.repo.History().ListVisits(ctx, id.Normalize(), limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list visits", goerr.V(PatientIDKey, id))
	}
	return visits, nil
}

// Conversations returns every conversation of the patient including open ones
func (uc *PatientUseCase) Conversations(ctx context.Context, id model.PatientID) ([]*model.Conversation, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}

	convs, err := uc.repo.Conversation().ListByPatient(ctx, id.Normalize())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations", goerr.V(PatientIDKey, id))
	}
	return convs, nil
}

// Transcript returns the conversation and its messages in order
func (uc *PatientUseCase) Transcript(ctx context.Context, conversationID int64) (*model.Conversation, []*model.Message, error) {
	conv, err := uc.repo.Conversation().Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil, goerr.Wrap(ErrConversationNotFound, "conversation not found", goerr.V(ConversationIDKey, conversationID))
		}
		return nil, nil, goerr.Wrap(err, "failed to get conversation", goerr.V(ConversationIDKey, conversationID))
	}

	messages, err := uc.repo.Message().List(ctx, conversationID)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to list messages", goerr.V(ConversationIDKey, conversationID))
	}
	return conv, messages, nil
}

// Delete removes the patient with all conversations, messages and history
func (uc *PatientUseCase) Delete(ctx context.Context, id model.PatientID) error {
	id = id.Normalize()
	if err := uc.repo.ClearPatient(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return goerr.Wrap(ErrPatientNotFound, "patient not found", goerr.V(PatientIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete patient", goerr.V(PatientIDKey, id))
	}

	logging.From(ctx).Info("Patient deleted", "patient_id", id)
	return nil
}

// ClearAll deletes every record in the store
func (uc *PatientUseCase) ClearAll(ctx context.Context) error {
	if err := uc.repo.ClearAll(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear all data")
	}

	logging.From(ctx).Warn("All patient data cleared")
	return nil
}
