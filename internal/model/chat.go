package model

import (
	"context"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxHistory is the number of prior messages carried with a chat request.
const MaxHistory = 10

// Message is one chat transcript entry.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// HistoryEntry is the wire shape of a prior message in a chat request.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Reply sources recorded on ChatEvent.
const (
	SourceLLM     = "llm"
	SourceKeyword = "keyword"
)

// ChatEvent is activity metadata for one answered question. It carries no
// message text.
type ChatEvent struct {
	At         time.Time
	Source     string // SourceLLM or SourceKeyword
	Topic      string // intent topic the question matched
	Latency    time.Duration
	HistoryLen int
}

// ChatStats summarizes chat activity over a window.
type ChatStats struct {
	Since      time.Time
	Total      int
	LLM        int
	Keyword    int
	ByTopic    map[string]int
	AvgLatency time.Duration
}

// LastN returns the trailing n entries of history (all of them when shorter).
func LastN(history []HistoryEntry, n int) []HistoryEntry {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// ResumeSource yields the current resume.
type ResumeSource interface {
	FetchResume(ctx context.Context) (Resume, error)
}

// ChatStore records chat activity for stats and digests.
type ChatStore interface {
	Record(ev ChatEvent) error
	Stats(since time.Time) (ChatStats, error)
	Cleanup(olderThan time.Duration) error
}

// Notifier sends chat activity digests to the owner.
type Notifier interface {
	Notify(stats ChatStats) error
}
