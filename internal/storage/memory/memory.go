// Package memory implements storage.Backend in process memory. Values live
// as long as the backend does.
package memory

import (
	"context"
	"sync"
)

// Backend stores values in a map.
type Backend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{values: make(map[string][]byte)}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Get returns a copy of the value under key.
func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value under key.
func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[key] = append([]byte(nil), value...)
	return nil
}
