// internal/common/idempotency/memory.go
package idempotency

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node runs.
// Expired entries are evicted lazily on Get.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key, bodyHash string) (*Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if s.now().After(stored.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	if stored.entry.BodyHash != bodyHash {
		return nil, false, nil
	}

	entry := stored.entry
	return &entry, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key, bodyHash string, response []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		entry: Entry{
			BodyHash:  bodyHash,
			Response:  json.RawMessage(response),
			CreatedAt: s.now().UTC(),
		},
		expiresAt: s.now().Add(ttl),
	}
	return nil
}
