package cache

import (
	"context"
	"maps"
	"sync"
)

// Store persists encoded buckets by name.
type Store interface {
	// LoadAll returns every stored bucket keyed by name.
	LoadAll(ctx context.Context) (map[string][]byte, error)
	// Save writes one bucket, replacing any previous content.
	Save(ctx context.Context, name string, data []byte) error
	// Clear removes every bucket from the store.
	Clear(ctx context.Context) error
	// Close releases the store's resources.
	Close() error
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// LoadAll implements Store.
func (m *MemoryStore) LoadAll(_ context.Context) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.data), nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[name] = append([]byte(nil), data...)

	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.data)

	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
