// Package storage provides the cache backends consumed by credcache: an
// enumerable in-memory map, a bounded in-memory store, and a distributed
// Valkey store with optional at-rest encryption, plus an OpenTelemetry
// instrumentation wrapper and an environment-driven factory.
package storage

import (
	"context"
	"sync"
)

// Memory is a mutex-guarded in-memory backend. It enumerates its own keys,
// so a manager over it never needs a key manifest, and its operations
// complete in-line, making it the reference backend for ClearSync.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{entries: map[string][]byte{}}
}

// Get retrieves a value. Returns the value, whether it was found, and any
// error.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores a value.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

// Remove deletes a key.
func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// AllKeys lists every stored key. Order is unspecified.
func (m *Memory) AllKeys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys, nil
}
