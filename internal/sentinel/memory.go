package sentinel

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Sentinel. Entries expire lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time

	// now is swappable in tests.
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if m.now().After(expiry) {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}

func (m *Memory) Put(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = m.now().Add(ttl)
	return nil
}
