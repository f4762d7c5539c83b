package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInquiryNotFound = errors.New("inquiry not found")

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Inquiry is one answered use case.
type Inquiry struct {
	ID        uuid.UUID `json:"id"`
	UseCase   string    `json:"useCase"`
	Variant   string    `json:"variant"`
	Result    string    `json:"result"` // response body as served, JSON encoded
	Acts      []string  `json:"acts"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListFilter narrows ListInquiries. An empty Act matches every inquiry.
type ListFilter struct {
	Limit int
	Act   string
}

// Store defines the persistence contract for inquiry history.
type Store interface {
	SaveInquiry(ctx context.Context, inq Inquiry) (Inquiry, error)
	GetInquiry(ctx context.Context, id uuid.UUID) (Inquiry, error)
	ListInquiries(ctx context.Context, f ListFilter) ([]Inquiry, error)
}

// ClampLimit bounds a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
