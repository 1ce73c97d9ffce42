package notifier

import (
	"log/slog"

	"github.com/amishk599/folio/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes chat digests to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each digest via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the digest totals and one line per topic.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(stats model.ChatStats) error {
	if stats.Total == 0 {
		n.logger.Info("chat digest: no activity", "since", stats.Since.Format("2006-01-02 15:04"))
		return nil
	}

	n.logger.Info("chat digest",
		"since", stats.Since.Format("2006-01-02 15:04"),
		"total", stats.Total,
		"llm", stats.LLM,
		"keyword", stats.Keyword,
		"avg_latency", stats.AvgLatency,
	)
	for _, tc := range TopTopics(stats, 0) {
		n.logger.Info("chat digest topic", "topic", tc.Topic, "count", tc.Count)
	}
	return nil
}
