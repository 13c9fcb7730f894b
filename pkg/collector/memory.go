package collector

import (
	"context"
	"sync"
)

// MemoryStore keeps events in memory. Data is lost on restart; useful
// for testing and development.
type MemoryStore struct {
	mu       sync.RWMutex
	events   []StoredEvent
	resolved map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:   make([]StoredEvent, 0, 1024),
		resolved: make(map[string]bool),
	}
}

func (s *MemoryStore) Append(_ context.Context, events []StoredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}

	out := make([]StoredEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *MemoryStore) MarkResolved(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolved[fingerprint] = true
	return nil
}

func (s *MemoryStore) Resolved(_ context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.resolved[fingerprint], nil
}

func (s *MemoryStore) Close() error { return nil }
