package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"legal-navigator/internal/app"
	"legal-navigator/internal/httputil"
	"legal-navigator/internal/queue"
	"legal-navigator/internal/recorder"
)

func main() {
	deps, err := app.BuildRecorder()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Log.Warn("failed to close dependencies", "err", err)
		}
	}()
	deps.Log.Info("recorder worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, deps); err != nil {
		deps.Log.Error("recorder stopped", "err", err)
	}
}

// run consumes record tasks and serves /healthz until ctx is cancelled or
// either side fails.
func run(ctx context.Context, deps app.RecorderDeps) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeRecord, recorder.TaskHandler(deps.Store, deps.Log))
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.Port, "recorder")
	})

	return g.Wait()
}
