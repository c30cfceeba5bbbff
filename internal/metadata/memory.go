package metadata

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Set(ctx context.Context, workspace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[workspace]
	if !ok {
		ns = make(map[string]string)
		m.data[workspace] = ns
	}
	ns[key] = value
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, workspace, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[workspace][key]
	return value, ok, nil
}

func (m *MemoryStore) Unset(ctx context.Context, workspace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ns, ok := m.data[workspace]; ok {
		delete(ns, key)
		if len(ns) == 0 {
			delete(m.data, workspace)
		}
	}
	return nil
}

func (m *MemoryStore) UnsetAll(ctx context.Context, workspace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, workspace)
	return nil
}

func (m *MemoryStore) ListNamespaces(ctx context.Context, keyPattern string) ([]string, error) {
	re, err := compilePattern(keyPattern)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	for workspace, ns := range m.data {
		for key := range ns {
			if re.MatchString(key) {
				seen[workspace] = true
				break
			}
		}
	}
	return sortedKeys(seen), nil
}

// Keys returns every fully qualified key currently stored.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	for workspace, ns := range m.data {
		for key := range ns {
			seen[Key(workspace, key)] = true
		}
	}
	return sortedKeys(seen)
}
