// Package memory provides the default in-process audit store: a bounded,
// thread-safe ring. When the ring is full the oldest entries age out; the
// retention bound is configuration, not mutation, so the append-only
// contract holds for every retained entry.
package memory

import (
	"context"
	"sync"

	"kbgate/internal/audit"
)

type Store struct {
	mu       sync.RWMutex
	entries  []audit.Entry
	head     int // next write position
	count    int
	capacity int
	lastID   uint64
}

// NewStore creates a ring-bounded store with the given retention.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 4096
	}
	return &Store{
		entries:  make([]audit.Entry, capacity),
		capacity: capacity,
	}
}

func (s *Store) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.head] = entry
	s.head = (s.head + 1) % s.capacity
	if s.count < s.capacity {
		s.count++
	}
	s.lastID = entry.ID
	return nil
}

func (s *Store) Recent(_ context.Context, limit int, traceID string) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]audit.Entry, 0, min(limit, s.count))
	// Walk backwards from the newest entry.
	for i := 1; i <= s.count && len(out) < limit; i++ {
		idx := (s.head - i + s.capacity) % s.capacity
		entry := s.entries[idx]
		if traceID != "" && entry.TraceID != traceID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) LastID(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastID, nil
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
