package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store for tests and single-instance development.
type MemoryStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	s       Session
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[uuid.UUID]memoryItem{}, now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(it.expires) {
		delete(m.items, id)
		return nil, ErrNotFound
	}
	s := it.s
	return &s, nil
}

func (m *MemoryStore) Replace(_ context.Context, prev *uuid.UUID, s *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev != nil {
		delete(m.items, *prev)
	}
	m.items[s.ID] = memoryItem{s: *s, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Len reports how many records are held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
