package storage

import (
	"context"
	"errors"
	"sync"
)

// StoredObject is an object kept by MemoryObjectStorage
type StoredObject struct {
	ContentType string
	Body        []byte
}

// MemoryObjectStorage keeps objects in process memory. It is used when
// object storage is disabled and in tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]StoredObject
	limit   int
	order   []string
}

// NewMemoryObjectStorage creates a store that keeps at most limit objects,
// dropping the oldest first. A limit of 0 keeps nothing.
func NewMemoryObjectStorage(limit int) *MemoryObjectStorage {
	return &MemoryObjectStorage{
		objects: make(map[string]StoredObject),
		limit:   limit,
	}
}

func (m *MemoryObjectStorage) PutObject(_ context.Context, key, contentType string, body []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if m.limit <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.objects[key]; !exists {
		m.order = append(m.order, key)
	}
	m.objects[key] = StoredObject{ContentType: contentType, Body: append([]byte(nil), body...)}

	for len(m.order) > m.limit {
		delete(m.objects, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

// Get returns a stored object
func (m *MemoryObjectStorage) Get(key string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)
