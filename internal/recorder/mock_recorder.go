package recorder

import (
	"context"

	"github.com/stretchr/testify/mock"

	"legal-navigator/internal/store"
)

// MockRecorder is a mock implementation of Recorder using testify/mock.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, inq store.Inquiry) error {
	args := m.Called(ctx, inq)
	return args.Error(0)
}
