// Package recorder persists answered inquiries, either directly into the
// store or through the task queue for cmd/recorder to pick up.
package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"legal-navigator/internal/analysis"
	"legal-navigator/internal/queue"
	"legal-navigator/internal/store"
)

const (
	enqueueAttempts = 3
	enqueueBackoff  = 200 * time.Millisecond
)

// Recorder saves an inquiry somewhere durable.
type Recorder interface {
	Record(ctx context.Context, inq store.Inquiry) error
}

// NewInquiry snapshots a successful analysis as served to the client.
func NewInquiry(useCase string, res analysis.Result) (store.Inquiry, error) {
	body, err := json.Marshal(res.Body())
	if err != nil {
		return store.Inquiry{}, fmt.Errorf("marshal result: %w", err)
	}
	return store.Inquiry{
		ID:        uuid.New(),
		UseCase:   useCase,
		Variant:   string(res.Variant),
		Result:    string(body),
		Acts:      res.Acts(),
		Model:     res.Model,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// StoreRecorder writes straight to the store.
type StoreRecorder struct {
	store store.Store
}

func NewStoreRecorder(st store.Store) *StoreRecorder {
	return &StoreRecorder{store: st}
}

func (r *StoreRecorder) Record(ctx context.Context, inq store.Inquiry) error {
	_, err := r.store.SaveInquiry(ctx, inq)
	return err
}

// QueueRecorder hands the inquiry to the recorder worker.
type QueueRecorder struct {
	queue queue.Queue
}

func NewQueueRecorder(q queue.Queue) *QueueRecorder {
	return &QueueRecorder{queue: q}
}

func (r *QueueRecorder) Record(ctx context.Context, inq store.Inquiry) error {
	task, err := queue.NewTask(queue.TaskTypeRecord, inq)
	if err != nil {
		return err
	}
	return queue.EnqueueWithRetry(ctx, r.queue, task, enqueueAttempts, enqueueBackoff)
}

// Noop discards inquiries when no store is configured.
type Noop struct{}

func (Noop) Record(context.Context, store.Inquiry) error { return nil }

// TaskHandler decodes record tasks and saves them. Decoding failures are
// logged and dropped since redelivery cannot fix them.
func TaskHandler(st store.Store, log *slog.Logger) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		var inq store.Inquiry
		if err := json.Unmarshal(task.Payload, &inq); err != nil {
			log.Error("dropping undecodable record task", "id", task.ID, "err", err)
			return nil
		}
		saved, err := st.SaveInquiry(ctx, inq)
		if err != nil {
			return fmt.Errorf("save inquiry %s: %w", inq.ID, err)
		}
		log.Info("inquiry recorded", "id", saved.ID, "variant", saved.Variant, "acts", len(saved.Acts))
		return nil
	}
}
