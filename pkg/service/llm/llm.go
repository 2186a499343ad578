// Package llm adapts language model providers to interfaces.LLM.
package llm

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
)

// unavailable marks err as a service failure while keeping the provider error in the chain
func unavailable(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(errors.Join(model.ErrLLMUnavailable, err), msg, opts...)
}
