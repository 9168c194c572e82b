package store

import (
	"context"
	"sync"

	"billing-engine/internal/core"
)

// MemoryBackend keeps collection payloads in process memory.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[core.Collection][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[core.Collection][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, name core.Collection) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.collections[name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), payload...), nil
}

func (m *MemoryBackend) Save(_ context.Context, name core.Collection, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[name] = append([]byte(nil), payload...)
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }
