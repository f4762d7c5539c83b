package queue

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockQueue records Enqueue and Worker calls. Tests that need a delivered
// task pull the Handler out of the Worker call arguments with mock.Run.
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Enqueue(ctx context.Context, task Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	return m.Called(ctx, taskType, handler).Error(0)
}
