package kv

import (
	"context"
	"sort"
	"strings"
	"sync"

	"healthcare-storefront/internal/domain"
	"healthcare-storefront/internal/domain/ports/repository"
)

var _ repository.KeyValueStore = (*MemoryStore)(nil)

// MemoryStore is the in-process key/value backend used by tests and as the
// degraded fallback when no durable store is configured. It can also simulate
// a disabled browser store via Disable, for exercising degrade paths.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]string
	disabled bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

// Disable makes every operation fail with ErrStorageUnavailable, mimicking a
// browser with local storage turned off or over quota.
func (m *MemoryStore) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = true
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disabled {
		return "", domain.ErrStorageUnavailable
	}
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return domain.ErrStorageUnavailable
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return domain.ErrStorageUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disabled {
		return nil, domain.ErrStorageUnavailable
	}
	var out []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}
