package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/folio/internal/model"
)

// DigestTask sends the chat activity recorded since its previous run to a
// notifier.
type DigestTask struct {
	store    model.ChatStore
	notifier model.Notifier
	logger   *slog.Logger
	now      func() time.Time

	since time.Time
}

// NewDigestTask creates a digest task whose first digest covers the last
// window.
func NewDigestTask(store model.ChatStore, notifier model.Notifier, window time.Duration, logger *slog.Logger) *DigestTask {
	return &DigestTask{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		since:    time.Now().Add(-window),
	}
}

func (d *DigestTask) Name() string { return "chat-digest" }

// Run gathers stats, notifies, and advances the window. A failed notification
// keeps the window so the next run reports the same activity again.
func (d *DigestTask) Run(_ context.Context) error {
	until := d.now()
	stats, err := d.store.Stats(d.since)
	if err != nil {
		return fmt.Errorf("chat digest: %w", err)
	}

	if err := d.notifier.Notify(stats); err != nil {
		return fmt.Errorf("chat digest: notifying: %w", err)
	}
	d.since = until

	d.logger.Info("sent chat digest",
		"questions", stats.Total,
		"llm", stats.LLM,
		"keyword", stats.Keyword,
	)
	return nil
}

// CleanupTask prunes chat events past the retention period.
type CleanupTask struct {
	store     model.ChatStore
	retention time.Duration
	logger    *slog.Logger
}

// NewCleanupTask creates a cleanup task.
func NewCleanupTask(store model.ChatStore, retention time.Duration, logger *slog.Logger) *CleanupTask {
	return &CleanupTask{store: store, retention: retention, logger: logger}
}

func (c *CleanupTask) Name() string { return "store-cleanup" }

func (c *CleanupTask) Run(_ context.Context) error {
	if err := c.store.Cleanup(c.retention); err != nil {
		return err
	}
	c.logger.Debug("chat store cleaned up", "retention", c.retention.String())
	return nil
}
