package cache

import (
	"context"
	"sync"
	"time"

	"bunah-checkout/internal/model"
)

type memoryEntry struct {
	draft   *model.OrderDraft
	expires time.Time
}

// MemoryStore is a process-local DraftStore. Entries expire after ttl; a
// non-positive ttl keeps them until deleted.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, draft *model.OrderDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{draft: draft}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.entries[draft.ReferenceID] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, referenceID string) (*model.OrderDraft, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[referenceID]
	if !ok || s.expired(e) {
		return nil, false, nil
	}
	return e.draft, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, referenceID)
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}
