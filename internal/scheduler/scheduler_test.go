package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/folio/internal/model"
)

// --- Mock implementations ---

type countingTask struct {
	name  string
	calls atomic.Int32
	err   error
}

func (c *countingTask) Name() string { return c.name }

func (c *countingTask) Run(_ context.Context) error {
	c.calls.Add(1)
	return c.err
}

type fakeStore struct {
	stats     model.ChatStats
	statsErr  error
	since     []time.Time
	cleanedAt []time.Duration
}

func (s *fakeStore) Record(_ model.ChatEvent) error { return nil }

func (s *fakeStore) Stats(since time.Time) (model.ChatStats, error) {
	s.since = append(s.since, since)
	st := s.stats
	st.Since = since
	return st, s.statsErr
}

func (s *fakeStore) Cleanup(olderThan time.Duration) error {
	s.cleanedAt = append(s.cleanedAt, olderThan)
	return nil
}

type recordingNotifier struct {
	got []model.ChatStats
	err error
}

func (n *recordingNotifier) Notify(stats model.ChatStats) error {
	n.got = append(n.got, stats)
	return n.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runFor(t *testing.T, s *Scheduler, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(d)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

// --- Tests ---

func TestNewScheduler_SkipsDisabledEntries(t *testing.T) {
	s := NewScheduler([]Entry{
		{Task: &countingTask{name: "a"}, Interval: time.Minute},
		{Task: &countingTask{name: "b"}, Interval: 0},
	}, discardLogger())
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	task := &countingTask{name: "slow"}
	s := NewScheduler([]Entry{{Task: task, Interval: time.Hour}}, discardLogger())
	runFor(t, s, 50*time.Millisecond)

	if got := task.calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0 without RunAtStart", got)
	}
}

func TestRun_TaskRunsEveryInterval(t *testing.T) {
	task := &countingTask{name: "tick"}
	s := NewScheduler([]Entry{{Task: task, Interval: 40 * time.Millisecond}}, discardLogger())
	runFor(t, s, 220*time.Millisecond)

	if got := task.calls.Load(); got < 2 {
		t.Errorf("calls = %d, want >= 2", got)
	}
}

func TestRun_RunAtStart(t *testing.T) {
	task := &countingTask{name: "eager"}
	s := NewScheduler([]Entry{{Task: task, Interval: time.Hour, RunAtStart: true}}, discardLogger())
	runFor(t, s, 50*time.Millisecond)

	if got := task.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestRun_FailingTaskDoesNotStopOthers(t *testing.T) {
	failing := &countingTask{name: "failing", err: errors.New("boom")}
	healthy := &countingTask{name: "healthy"}
	s := NewScheduler([]Entry{
		{Task: failing, Interval: 30 * time.Millisecond, RunAtStart: true},
		{Task: healthy, Interval: 30 * time.Millisecond, RunAtStart: true},
	}, discardLogger())
	runFor(t, s, 150*time.Millisecond)

	if got := failing.calls.Load(); got < 2 {
		t.Errorf("failing task calls = %d, want >= 2 (errors must not stop its loop)", got)
	}
	if got := healthy.calls.Load(); got < 2 {
		t.Errorf("healthy task calls = %d, want >= 2", got)
	}
}

func TestDigestTask_AdvancesWindow(t *testing.T) {
	store := &fakeStore{stats: model.ChatStats{Total: 3}}
	notifier := &recordingNotifier{}
	d := NewDigestTask(store, notifier, 24*time.Hour, discardLogger())

	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return t1 }
	initial := d.since

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(notifier.got) != 2 || notifier.got[0].Total != 3 {
		t.Fatalf("notified = %+v", notifier.got)
	}
	if !store.since[0].Equal(initial) || !store.since[1].Equal(t1) {
		t.Errorf("windows = %v, want [%v %v]", store.since, initial, t1)
	}
}

func TestDigestTask_NotifyFailureKeepsWindow(t *testing.T) {
	store := &fakeStore{}
	notifier := &recordingNotifier{err: errors.New("slack down")}
	d := NewDigestTask(store, notifier, time.Hour, discardLogger())
	initial := d.since

	if err := d.Run(context.Background()); err == nil {
		t.Fatal("expected error when notifier fails")
	}
	if !d.since.Equal(initial) {
		t.Errorf("since moved to %v after failed notify", d.since)
	}
}

func TestDigestTask_StatsError(t *testing.T) {
	store := &fakeStore{statsErr: errors.New("db locked")}
	notifier := &recordingNotifier{}
	d := NewDigestTask(store, notifier, time.Hour, discardLogger())

	if err := d.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(notifier.got) != 0 {
		t.Error("notifier must not be called when stats fail")
	}
}

func TestCleanupTask(t *testing.T) {
	store := &fakeStore{}
	c := NewCleanupTask(store, 72*time.Hour, discardLogger())
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.cleanedAt) != 1 || store.cleanedAt[0] != 72*time.Hour {
		t.Errorf("Cleanup calls = %v", store.cleanedAt)
	}
}
