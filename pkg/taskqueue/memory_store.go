package taskqueue

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore implements Store in memory for tests and local development.
// A single mutex makes the fetch-then-lock pair atomic with respect to
// concurrent fetches, matching the relational implementation.
type MemoryStore struct {
	mu     sync.Mutex
	items  []*Item
	nextID int64
}

// NewMemoryStore creates an empty in-memory queue.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Enqueue implements Store.
func (s *MemoryStore) Enqueue(ctx context.Context, typ string, locked bool, payload any) error {
	encoded, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.items = append(s.items, &Item{
		ID:      s.nextID,
		Type:    typ,
		Payload: encoded,
		Locked:  locked,
	})
	return nil
}

// Fetch implements Store.
func (s *MemoryStore) Fetch(ctx context.Context, filter Filter, respectLocks bool) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Item
	for _, item := range s.items {
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if filter.ID != 0 && item.ID != filter.ID {
			continue
		}
		if respectLocks && item.Locked {
			continue
		}
		item.Locked = true
		out = append(out, *item)
	}
	return out, nil
}

// SetLockStatus implements Store.
func (s *MemoryStore) SetLockStatus(ctx context.Context, item Item, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stored := range s.items {
		if stored.ID == item.ID {
			stored.Locked = locked
			return nil
		}
	}
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.DeleteFunc(s.items, func(stored *Item) bool {
		return stored.ID == item.ID
	})
	return nil
}

// Len reports the number of items currently stored, for tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns a copy of all stored items without touching any lock, for
// tests that need to observe queue state.
func (s *MemoryStore) Snapshot() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out
}
