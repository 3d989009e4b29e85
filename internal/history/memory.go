package history

import (
	"context"
	"sync"
)

// MemoryStore keeps at most limit records per caller in process memory.
// Used when Redis is not configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	records map[string][]Record
}

// NewMemoryStore returns a store capped at limit records per caller (50 if
// limit is not positive).
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = 50
	}
	return &MemoryStore{limit: limit, records: make(map[string][]Record)}
}

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]Record{rec}, s.records[rec.CallerID]...)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.records[rec.CallerID] = list
	return nil
}

func (s *MemoryStore) List(_ context.Context, callerID string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.records[callerID]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	out := make([]Record, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, callerID string) error {
	s.mu.Lock()
	delete(s.records, callerID)
	s.mu.Unlock()
	return nil
}
