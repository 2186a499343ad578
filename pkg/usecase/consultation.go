package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

// DefaultLLMTimeout bounds a single model call
const DefaultLLMTimeout = 60 * time.Second

// ConsultationUseCase creates consultation sessions sharing one store, model and prompt setup
type ConsultationUseCase struct {
	repo       interfaces.Repository
	llm        interfaces.LLM
	builder    *ContextBuilder
	llmTimeout time.Duration
	defaults   SummaryDefaults
}

func NewConsultationUseCase(repo interfaces.Repository, llm interfaces.LLM, builder *ContextBuilder, llmTimeout time.Duration, defaults SummaryDefaults) *ConsultationUseCase {
	if llm == nil {
		llm = unconfiguredLLM{}
	}
	return &ConsultationUseCase{
		repo:       repo,
		llm:        llm,
		builder:    builder,
		llmTimeout: llmTimeout,
		defaults:   defaults,
	}
}

// NewSession returns an idle session
func (uc *ConsultationUseCase) NewSession() *Session {
	return newSession(uc.repo, uc.llm, uc.builder, uc.llmTimeout, uc.defaults)
}

// Builder exposes the prompt builder, e.g. to preview a turn prompt
func (uc *ConsultationUseCase) Builder() *ContextBuilder {
	return uc.builder
}

// unconfiguredLLM stands in when no model is set up, so that patient
// management works without credentials
type unconfiguredLLM struct{}

func (unconfiguredLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return "", goerr.Wrap(model.ErrLLMUnavailable, "no language model is configured")
}
