package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"legal-navigator/internal/retry"
)

const (
	subjectPrefix      = "legal.tasks."
	defaultMaxAttempts = 5
	redeliveryBase     = time.Second
)

// NewNATS returns a Queue publishing tasks as JSON on core NATS subjects.
func NewNATS(log *slog.Logger, nc *nats.Conn) Queue {
	return &natsQueue{log: log, nc: nc}
}

type natsQueue struct {
	log *slog.Logger
	nc  *nats.Conn
}

func subject(t TaskType) string { return subjectPrefix + string(t) }

// queueGroup lets several recorder processes share one subscription so each
// inquiry is written once.
func queueGroup(t TaskType) string { return "recorders-" + string(t) }

func (q *natsQueue) Enqueue(_ context.Context, task Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Type == "" {
		return errors.New("task type required")
	}
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.nc.Publish(subject(task.Type), body)
}

// Worker serves tasks of taskType until ctx is cancelled. cmd/recorder runs
// it for TaskTypeRecord so answered inquiries reach the store off the
// request path. Failed tasks are republished with a backoff until their
// attempts run out.
func (q *natsQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	sub, err := q.nc.QueueSubscribe(subject(taskType), queueGroup(taskType), func(msg *nats.Msg) {
		q.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	q.log.Info("worker subscribed", "subject", sub.Subject, "group", sub.Queue)
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (q *natsQueue) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var task Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		q.log.Error("failed to decode task", "subject", msg.Subject, "err", err)
		return
	}

	if wait := time.Until(task.NotBefore); wait > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}

	if err := handler(ctx, task); err != nil {
		q.redeliver(ctx, task, err)
		return
	}
	q.log.Debug("task handled", "id", task.ID, "type", task.Type, "attempt", task.Attempts+1)
}

func (q *natsQueue) redeliver(ctx context.Context, task Task, handlerErr error) {
	next, ok := nextAttempt(task, time.Now())
	if !ok {
		q.log.Error("task permanently failed", "id", task.ID, "type", task.Type, "attempts", next.Attempts, "err", handlerErr)
		return
	}
	q.log.Warn("task failed, scheduling redelivery", "id", task.ID, "type", task.Type, "attempt", next.Attempts, "not_before", next.NotBefore, "err", handlerErr)
	if err := q.Enqueue(ctx, next); err != nil {
		q.log.Error("failed to re-enqueue task", "id", task.ID, "type", task.Type, "handler_err", handlerErr, "enqueue_err", err)
	}
}

// nextAttempt counts a failed attempt and reports whether the task may run
// again, and when.
func nextAttempt(task Task, now time.Time) (Task, bool) {
	task.Attempts++
	if task.MaxAttempts <= 0 {
		task.MaxAttempts = defaultMaxAttempts
	}
	if task.Attempts >= task.MaxAttempts {
		return task, false
	}
	task.NotBefore = now.Add(retry.ExponentialBackoff(task.Attempts, redeliveryBase))
	return task, true
}
