package usecase

import (
	"time"

	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
)

type UseCases struct {
	repo         interfaces.Repository
	llm          interfaces.LLM
	systemPrompt string
	historyLimit int
	llmTimeout   time.Duration
	defaults     SummaryDefaults

	Patient      *PatientUseCase
	Consultation *ConsultationUseCase
	Sessions     *SessionRegistry
}

type Option func(*UseCases)

func WithLLM(llm interfaces.LLM) Option {
	return func(uc *UseCases) {
		uc.llm = llm
	}
}

// WithSystemPrompt replaces the built-in assistant instructions
func WithSystemPrompt(prompt string) Option {
	return func(uc *UseCases) {
		uc.systemPrompt = prompt
	}
}

// WithHistoryLimit sets how many past visits go into a turn prompt
func WithHistoryLimit(limit int) Option {
	return func(uc *UseCases) {
		uc.historyLimit = limit
	}
}

func WithLLMTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.llmTimeout = d
	}
}

// WithSummaryDefaults overrides fallback texts; empty fields keep the built-in text
func WithSummaryDefaults(d SummaryDefaults) Option {
	return func(uc *UseCases) {
		if d.Summary != "" {
			uc.defaults.Summary = d.Summary
		}
		if d.Diagnoses != "" {
			uc.defaults.Diagnoses = d.Diagnoses
		}
		if d.PendingDiagnoses != "" {
			uc.defaults.PendingDiagnoses = d.PendingDiagnoses
		}
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		llmTimeout: DefaultLLMTimeout,
		defaults:   DefaultSummaryDefaults(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	builder := NewContextBuilder(repo, uc.systemPrompt, uc.historyLimit)
	uc.Patient = NewPatientUseCase(repo)
	uc.Consultation = NewConsultationUseCase(repo, uc.llm, builder, uc.llmTimeout, uc.defaults)
	uc.Sessions = NewSessionRegistry(uc.Consultation)

	return uc
}
