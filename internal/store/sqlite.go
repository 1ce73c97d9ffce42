package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/folio/internal/model"
)

var _ model.ChatStore = (*SQLiteStore)(nil)

// SQLiteStore records chat activity metadata in a SQLite database. Message
// text is never stored.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// chat_events table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS chat_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		at_ms       INTEGER NOT NULL,
		source      TEXT    NOT NULL,
		topic       TEXT    NOT NULL,
		latency_ms  INTEGER NOT NULL,
		history_len INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chat_events table: %w", err)
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_chat_events_at ON chat_events (at_ms)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chat_events index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record stores one chat event.
func (s *SQLiteStore) Record(ev model.ChatEvent) error {
	_, err := s.db.Exec(
		"INSERT INTO chat_events (at_ms, source, topic, latency_ms, history_len) VALUES (?, ?, ?, ?, ?)",
		ev.At.UnixMilli(), ev.Source, ev.Topic, ev.Latency.Milliseconds(), ev.HistoryLen,
	)
	if err != nil {
		return fmt.Errorf("recording chat event: %w", err)
	}
	return nil
}

// Stats summarizes events recorded at or after since.
func (s *SQLiteStore) Stats(since time.Time) (model.ChatStats, error) {
	rows, err := s.db.Query(
		`SELECT source, topic, COUNT(*), COALESCE(SUM(latency_ms), 0)
		 FROM chat_events WHERE at_ms >= ? GROUP BY source, topic`,
		since.UnixMilli(),
	)
	if err != nil {
		return model.ChatStats{}, fmt.Errorf("querying chat stats: %w", err)
	}
	defer rows.Close()

	stats := model.ChatStats{Since: since, ByTopic: make(map[string]int)}
	var totalLatencyMS int64
	for rows.Next() {
		var (
			source, topic string
			count         int
			latencyMS     int64
		)
		if err := rows.Scan(&source, &topic, &count, &latencyMS); err != nil {
			return model.ChatStats{}, fmt.Errorf("scanning chat stats: %w", err)
		}
		stats.Total += count
		stats.ByTopic[topic] += count
		switch source {
		case model.SourceLLM:
			stats.LLM += count
		case model.SourceKeyword:
			stats.Keyword += count
		}
		totalLatencyMS += latencyMS
	}
	if err := rows.Err(); err != nil {
		return model.ChatStats{}, fmt.Errorf("reading chat stats: %w", err)
	}

	if stats.Total > 0 {
		stats.AvgLatency = time.Duration(totalLatencyMS/int64(stats.Total)) * time.Millisecond
	}
	return stats, nil
}

// Cleanup deletes events older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM chat_events WHERE at_ms < ?", cutoff.UnixMilli())
	if err != nil {
		return fmt.Errorf("cleaning up chat events older than %v: %w", olderThan, err)
	}
	return nil
}

// IsEmpty returns true if no events have been recorded.
func (s *SQLiteStore) IsEmpty() (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chat_events").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking if store is empty: %w", err)
	}
	return count == 0, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
