package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

// Gollem completes prompts through a gollem client. Every call opens a fresh
// session, so no conversation memory is carried between calls.
type Gollem struct {
	client gollem.LLMClient
}

var _ interfaces.LLM = &Gollem{}

func NewGollem(client gollem.LLMClient) (*Gollem, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Gollem{client: client}, nil
}

func (g *Gollem) Complete(ctx context.Context, prompt string) (string, error) {
	session, err := g.client.NewSession(ctx)
	if err != nil {
		return "", unavailable(err, "failed to create LLM session")
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)})
	if err != nil {
		return "", unavailable(err, "failed to generate content")
	}

	text := strings.Join(resp.Texts, "")
	if strings.TrimSpace(text) == "" {
		return "", goerr.Wrap(model.ErrLLMUnavailable, "empty response from LLM")
	}
	return text, nil
}
