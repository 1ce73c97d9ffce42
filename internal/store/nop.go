package store

import (
	"time"

	"github.com/amishk599/folio/internal/model"
)

var _ model.ChatStore = (*NopStore)(nil)

// NopStore is used when store.path is empty. It discards every event and
// reports empty stats.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Record(ev model.ChatEvent) error { return nil }
func (s *NopStore) Stats(since time.Time) (model.ChatStats, error) {
	return model.ChatStats{Since: since, ByTopic: map[string]int{}}, nil
}
func (s *NopStore) Cleanup(olderThan time.Duration) error { return nil }
func (s *NopStore) Close() error                          { return nil }
