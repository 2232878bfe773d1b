package store

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Memory keeps sessions in process. Entries older than ttl are treated as
// missing and pruned on the next write; a zero ttl keeps them forever.
type Memory struct {
	mu     sync.RWMutex
	values map[string]entry
	ttl    time.Duration
	now    func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		values: make(map[string]entry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Memory) expired(e entry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

func (m *Memory) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.values[id]
	if !ok || m.expired(e, m.now()) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Set(_ context.Context, id string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.values {
		if m.expired(e, now) {
			delete(m.values, k)
		}
	}

	e := entry{value: append([]byte(nil), value...)}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
	}
	m.values[id] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, id)
	return nil
}

func (m *Memory) Close() error { return nil }
