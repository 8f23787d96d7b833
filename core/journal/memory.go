package journal

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory, dropping the oldest beyond max.
type MemoryStore struct {
	mu   sync.Mutex
	recs []Record
	max  int
}

// NewMemoryStore creates a store holding at most max records; max <= 0
// means unbounded.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: max}
}

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	if s.max > 0 && len(s.recs) > s.max {
		s.recs = append(s.recs[:0], s.recs[len(s.recs)-s.max:]...)
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Record
	for _, r := range s.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return q.limit(res), nil
}

func (s *MemoryStore) Close() error { return nil }
