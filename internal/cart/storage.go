package cart

import (
	"context"
	"errors"
	"sync"
)

// StorageKey names the durable cart record. Backends namespace it per session.
const StorageKey = "cart"

var ErrNotStored = errors.New("no stored cart")

// Storage persists the serialized cart of one session.
type Storage interface {
	Load(ctx context.Context, session string) ([]byte, error)
	Save(ctx context.Context, session string, data []byte) error
}

func storageKey(session string) string {
	return StorageKey + ":" + session
}

// MemoryStorage is used for tests and local scenarios.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(_ context.Context, session string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[storageKey(session)]
	if !ok {
		return nil, ErrNotStored
	}
	return append([]byte(nil), raw...), nil
}

func (m *MemoryStorage) Save(_ context.Context, session string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[storageKey(session)] = append([]byte(nil), data...)
	return nil
}

// Put seeds raw bytes, bypassing serialization.
func (m *MemoryStorage) Put(session string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[storageKey(session)] = raw
}
