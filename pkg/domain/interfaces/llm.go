package interfaces

import "context"

// LLM is a stateless text completion service. Every call carries its full context.
// Failures wrap model.ErrLLMUnavailable.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
