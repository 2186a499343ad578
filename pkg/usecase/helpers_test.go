package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/usecase"
)

// mockLLM is a function-field stub of interfaces.LLM
type mockLLM struct {
	completeFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, prompt)
	}
	return "mock reply", nil
}

// faultyRepo wraps a repository and injects failures into selected calls
type faultyRepo struct {
	interfaces.Repository
	closeErr      error
	listVisitsErr error
	getPatientErr error
}

func (r *faultyRepo) CloseConversation(ctx context.Context, conversationID int64, summary string, entry *model.HistoryEntry) (*model.HistoryEntry, error) {
	if r.closeErr != nil {
		return nil, r.closeErr
	}
	return r.Repository.CloseConversation(ctx, conversationID, summary, entry)
}

func (r *faultyRepo) History() interfaces.HistoryRepository {
	return &faultyHistory{HistoryRepository: r.Repository.History(), listVisitsErr: r.listVisitsErr}
}

func (r *faultyRepo) Patient() interfaces.PatientRepository {
	return &faultyPatient{PatientRepository: r.Repository.Patient(), getErr: r.getPatientErr}
}

type faultyHistory struct {
	interfaces.HistoryRepository
	listVisitsErr error
}

func (h *faultyHistory) ListVisits(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Visit, error) {
	if h.listVisitsErr != nil {
		return nil, h.listVisitsErr
	}
	return h.HistoryRepository.ListVisits(ctx, patientID, limit)
}

type faultyPatient struct {
	interfaces.PatientRepository
	getErr error
}

func (p *faultyPatient) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	if p.getErr != nil {
		return nil, p.getErr
	}
	return p.PatientRepository.Get(ctx, id)
}

func registerPatient(t *testing.T, uc *usecase.UseCases, id, name string) *model.Patient {
	t.Helper()
	p, err := uc.Patient.Register(context.Background(), usecase.RegisterPatientInput{
		ID:     id,
		Name:   name,
		Age:    34,
		Gender: "Female",
	})
	gt.NoError(t, err).Required()
	return p
}
