// Package apperror defines the failure kinds an analysis request can end in
// and how each one is reported over HTTP.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrProvider         = errors.New("provider error")
	ErrMalformedOutput  = errors.New("malformed model output")
	ErrSchemaViolation  = errors.New("schema violation")
)

// ValidationError rejects an incoming request before the pipeline runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ModelUnavailable means discovery found no model able to generate text.
type ModelUnavailable struct {
	Family string
}

func (e *ModelUnavailable) Error() string {
	return fmt.Sprintf("no %q model with text generation enabled", e.Family)
}

func (e *ModelUnavailable) Is(target error) bool { return target == ErrModelUnavailable }

// ProviderError wraps a failed call to the generative-text provider.
// Status is the upstream HTTP status, or 0 for transport failures.
type ProviderError struct {
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("provider error: %s", e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// Timeout reports whether the provider call ran past its deadline.
func (e *ProviderError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// MalformedModelOutput carries the cleaned text that failed to parse.
// Cleaned is for server-side logs only and must not reach clients.
type MalformedModelOutput struct {
	Cleaned string
	Err     error
}

func (e *MalformedModelOutput) Error() string {
	return "model output is not valid JSON"
}

func (e *MalformedModelOutput) Unwrap() error { return e.Err }

func (e *MalformedModelOutput) Is(target error) bool { return target == ErrMalformedOutput }

// SchemaViolation reports the first element that does not match the
// expected record shape. Index is -1 when the document itself is wrong.
type SchemaViolation struct {
	Index  int
	Field  string
	Reason string
}

func (e *SchemaViolation) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("schema violation: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("schema violation at element %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("schema violation at element %d field %q: %s", e.Index, e.Field, e.Reason)
	}
}

func (e *SchemaViolation) Is(target error) bool { return target == ErrSchemaViolation }

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	var pe *ProviderError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.As(err, &pe) && pe.Timeout():
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrModelUnavailable),
		errors.Is(err, ErrProvider),
		errors.Is(err, ErrMalformedOutput),
		errors.Is(err, ErrSchemaViolation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to send to a client.
func PublicMessage(err error) string {
	var mo *MalformedModelOutput
	if errors.As(err, &mo) {
		return mo.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
