// Package memory provides an in-process storage.KV.
package memory

import (
	"context"
	"sync"

	"gtodo/internal/storage"
)

// KV is an in-memory implementation of storage.KV.
type KV struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes int

	// Error injection for testing
	GetErr error
	SetErr error
}

// New creates an empty KV.
func New() *KV {
	return &KV{data: make(map[string][]byte)}
}

// Get implements storage.KV.
func (m *KV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements storage.KV.
func (m *KV) Set(ctx context.Context, key string, value []byte) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

// Delete implements storage.KV.
func (m *KV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

// Close implements storage.KV.
func (m *KV) Close() error { return nil }

// Writes returns the number of successful Set calls.
func (m *KV) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
