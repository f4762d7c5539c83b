package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveInquiry(ctx context.Context, inq Inquiry) (Inquiry, error) {
	args := m.Called(ctx, inq)
	return args.Get(0).(Inquiry), args.Error(1)
}

func (m *MockStore) GetInquiry(ctx context.Context, id uuid.UUID) (Inquiry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Inquiry), args.Error(1)
}

func (m *MockStore) ListInquiries(ctx context.Context, f ListFilter) ([]Inquiry, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Inquiry), args.Error(1)
}
