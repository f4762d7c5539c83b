package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"legal-navigator/internal/analysis"
	"legal-navigator/internal/queue"
	"legal-navigator/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() analysis.Result {
	return analysis.Result{
		Variant: analysis.VariantScenarios,
		Model:   "gemini-2.5-flash",
		Scenarios: []analysis.ScenarioCard{
			{Act: "California Vehicle Code", Section: "11713.18", Summary: "s", Detail: "d", Action: "a"},
		},
	}
}

func TestNewInquiry(t *testing.T) {
	inq, err := NewInquiry("buying a used car", sampleResult())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, inq.ID)
	assert.Equal(t, "buying a used car", inq.UseCase)
	assert.Equal(t, "scenarios", inq.Variant)
	assert.Equal(t, []string{"California Vehicle Code"}, inq.Acts)
	assert.Equal(t, "gemini-2.5-flash", inq.Model)
	assert.False(t, inq.CreatedAt.IsZero())
	assert.JSONEq(t, `{"scenarios":[{"act":"California Vehicle Code","section":"11713.18","summary":"s","detail":"d","action":"a"}]}`, inq.Result)
}

func TestStoreRecorder(t *testing.T) {
	st := new(store.MockStore)
	inq := store.Inquiry{ID: uuid.New()}
	st.On("SaveInquiry", mock.Anything, inq).Return(inq, nil).Once()

	require.NoError(t, NewStoreRecorder(st).Record(context.Background(), inq))
	st.AssertExpectations(t)
}

func TestQueueRecorder(t *testing.T) {
	q := new(queue.MockQueue)
	inq := store.Inquiry{ID: uuid.New(), UseCase: "x", Acts: []string{"A"}}
	q.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
		var got store.Inquiry
		return task.Type == queue.TaskTypeRecord &&
			json.Unmarshal(task.Payload, &got) == nil &&
			got.ID == inq.ID
	})).Return(nil).Once()

	require.NoError(t, NewQueueRecorder(q).Record(context.Background(), inq))
	q.AssertExpectations(t)
}

func TestTaskHandler(t *testing.T) {
	inq := store.Inquiry{ID: uuid.New(), UseCase: "x", Variant: "markdown", Result: `{"result":"md"}`}
	payload, err := json.Marshal(inq)
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload []byte
		setup   func(*store.MockStore)
		wantErr bool
	}{
		{
			name:    "saves inquiry",
			payload: payload,
			setup: func(s *store.MockStore) {
				s.On("SaveInquiry", mock.Anything, mock.MatchedBy(func(got store.Inquiry) bool {
					return got.ID == inq.ID && got.Result == inq.Result
				})).Return(inq, nil).Once()
			},
		},
		{
			name:    "store failure is retried",
			payload: payload,
			setup: func(s *store.MockStore) {
				s.On("SaveInquiry", mock.Anything, mock.Anything).Return(store.Inquiry{}, errors.New("db down")).Once()
			},
			wantErr: true,
		},
		{
			name:    "garbage payload is dropped",
			payload: []byte("{not json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(store.MockStore)
			if tt.setup != nil {
				tt.setup(st)
			}
			h := TaskHandler(st, discardLogger())

			err := h(context.Background(), queue.Task{ID: uuid.New(), Type: queue.TaskTypeRecord, Payload: tt.payload})

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			st.AssertExpectations(t)
		})
	}
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Record(context.Background(), store.Inquiry{}))
}
