package llm

import (
	"context"
	"errors"

	"legal-navigator/internal/apperror"
)

// Completion is the raw text of the first completion candidate and the
// model that produced it.
type Completion struct {
	Text  string
	Model string
}

// ModelInfo describes one model reported by a provider's list endpoint.
type ModelInfo struct {
	ID        string
	Generates bool
}

// Provider is a minimal generative-text backend to allow pluggable vendors.
// Implementations report failures as *apperror.ProviderError.
type Provider interface {
	Name() string
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// RetryOnStatus returns a predicate matching provider errors with one of
// the given upstream statuses.
func RetryOnStatus(statuses ...int) func(error) bool {
	return func(err error) bool {
		var pe *apperror.ProviderError
		if !errors.As(err, &pe) {
			return false
		}
		for _, s := range statuses {
			if pe.Status == s {
				return true
			}
		}
		return false
	}
}
