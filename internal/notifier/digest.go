package notifier

import (
	"sort"
	"time"

	"github.com/amishk599/folio/internal/model"
)

// TopicCount is one row of a digest's topic breakdown.
type TopicCount struct {
	Topic string
	Count int
}

// TopTopics returns the topics of stats by descending count, ties broken by
// name. n <= 0 returns all of them.
func TopTopics(stats model.ChatStats, n int) []TopicCount {
	out := make([]TopicCount, 0, len(stats.ByTopic))
	for topic, count := range stats.ByTopic {
		out = append(out, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SendTestMessage sends a sample digest to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	stats := model.ChatStats{
		Since:      time.Now().Add(-24 * time.Hour),
		Total:      7,
		LLM:        5,
		Keyword:    2,
		ByTopic:    map[string]int{"skills": 3, "projects": 2, "contact": 1, "greeting": 1},
		AvgLatency: 850 * time.Millisecond,
	}
	return n.Notify(stats)
}
