// Package scheduler runs folio's background tasks (resume reload, chat
// digests, store cleanup), each on its own interval.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one unit of periodic background work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry schedules a task. With RunAtStart the task also runs once immediately.
type Entry struct {
	Task       Task
	Interval   time.Duration
	RunAtStart bool
}

// Scheduler owns the background loops. Each entry runs in its own goroutine
// so a slow task never delays the others.
type Scheduler struct {
	entries []Entry
	logger  *slog.Logger
}

// NewScheduler creates a scheduler. Entries with a non-positive interval are
// ignored.
func NewScheduler(entries []Entry, logger *slog.Logger) *Scheduler {
	var active []Entry
	for _, e := range entries {
		if e.Interval > 0 {
			active = append(active, e)
		}
	}
	return &Scheduler{entries: active, logger: logger}
}

// Len returns the number of scheduled tasks.
func (s *Scheduler) Len() int { return len(s.entries) }

// Run starts every loop and blocks until ctx is cancelled. It returns nil on
// cancellation (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "tasks", len(s.entries))

	var wg sync.WaitGroup
	for _, e := range s.entries {
		e := e
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, e)
		}()
	}

	<-ctx.Done()
	wg.Wait()
	s.logger.Info("shutting down scheduler")
	return nil
}

func (s *Scheduler) loop(ctx context.Context, e Entry) {
	s.logger.Debug("scheduled task", "task", e.Task.Name(), "interval", e.Interval.String())

	if e.RunAtStart {
		s.runOnce(ctx, e.Task)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.Interval):
			s.runOnce(ctx, e.Task)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}
	if err := t.Run(ctx); err != nil {
		s.logger.Error("task failed", "task", t.Name(), "error", err)
	}
}
