// Package poller runs a function on a fixed interval until stopped.
// Stopping cancels the context of the run in flight.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"votedesk/pkg/logger"
)

// Task is a cancellable periodic job
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error

	logger *logger.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a stopped task
func New(name string, interval time.Duration, run func(ctx context.Context) error, log *logger.Logger) *Task {
	return &Task{
		Name:     name,
		Interval: interval,
		Run:      run,
		logger:   log.WithField("task", name),
	}
}

// Start runs the task once immediately and then every Interval, until ctx
// is done or Stop is called. Starting a running task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.isRunning = true

	t.logger.WithField("interval", t.Interval.String()).Debug("Starting poller")
	go t.loop(runCtx, t.done)
}

func (t *Task) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	t.tick(ctx)
	for {
		select {
		case <-ticker.C:
			t.tick(ctx)
		case <-ctx.Done():
			t.logger.Debug("Poller stopped")
			return
		}
	}
}

func (t *Task) tick(ctx context.Context) {
	if err := t.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		t.logger.WithError(err).Warn("Poll failed")
	}
}

// Stop cancels the task and waits for the loop to exit
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return
	}
	t.cancel()
	done := t.done
	t.isRunning = false
	t.mu.Unlock()

	<-done
}

// Running reports whether the loop is active
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

// Refresh builds a Run function that fetches a value and hands it to apply.
// A value fetched by a run whose context was cancelled is dropped.
func Refresh[T any](fetch func(ctx context.Context) (T, error), apply func(T)) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		apply(v)
		return nil
	}
}
