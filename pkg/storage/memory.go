package storage

import (
	"context"
	"sync"
)

// MemoryKV is a thread-safe in-process store. State is lost on restart.
type MemoryKV struct {
	items map[string]string
	mu    sync.RWMutex
}

// NewMemoryKV creates an empty store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Count returns the number of stored keys
func (m *MemoryKV) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}

// Flush removes all keys
func (m *MemoryKV) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]string)
}

func (m *MemoryKV) Ping(context.Context) error { return nil }

func (m *MemoryKV) Close() error { return nil }
