package analysis

import (
	"context"

	"github.com/stretchr/testify/mock"

	"legal-navigator/internal/llm"
)

// MockInvoker is a mock implementation of Invoker using testify/mock.
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, prompt string) (llm.Completion, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(llm.Completion), args.Error(1)
}
