package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", &ValidationError{Field: "useCase", Reason: "required"}, http.StatusBadRequest},
		{"model unavailable", &ModelUnavailable{Family: "gemini"}, http.StatusBadGateway},
		{"provider 429", &ProviderError{Status: 429, Message: "quota"}, http.StatusBadGateway},
		{"provider timeout", &ProviderError{Message: "deadline", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"malformed", &MalformedModelOutput{Cleaned: "nope"}, http.StatusBadGateway},
		{"schema", &SchemaViolation{Index: 1, Field: "act", Reason: "missing"}, http.StatusBadGateway},
		{"wrapped provider", fmt.Errorf("invoke: %w", &ProviderError{Status: 503}), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	assert.ErrorIs(t, &ValidationError{}, ErrValidation)
	assert.ErrorIs(t, &ModelUnavailable{}, ErrModelUnavailable)
	assert.ErrorIs(t, &ProviderError{}, ErrProvider)
	assert.ErrorIs(t, &MalformedModelOutput{}, ErrMalformedOutput)
	assert.ErrorIs(t, &SchemaViolation{}, ErrSchemaViolation)
	assert.NotErrorIs(t, &SchemaViolation{}, ErrProvider)
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("generate: %w", &ProviderError{Message: "transport", Err: cause})

	assert.ErrorIs(t, err, cause)

	var pe *ProviderError
	if assert.ErrorAs(t, err, &pe) {
		assert.Equal(t, 0, pe.Status)
		assert.Equal(t, "provider error: transport", pe.Error())
	}
}

func TestPublicMessageHidesModelText(t *testing.T) {
	err := fmt.Errorf("normalize: %w", &MalformedModelOutput{Cleaned: "secret model text"})

	msg := PublicMessage(err)

	assert.NotContains(t, msg, "secret model text")
	assert.Equal(t, "model output is not valid JSON", msg)
}

func TestSchemaViolationMessage(t *testing.T) {
	assert.Equal(t, "schema violation: expected array", (&SchemaViolation{Index: -1, Reason: "expected array"}).Error())
	assert.Equal(t, `schema violation at element 2 field "detail": missing`,
		(&SchemaViolation{Index: 2, Field: "detail", Reason: "missing"}).Error())
}
