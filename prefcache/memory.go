package prefcache

import (
	"context"
	"sync"
)

// Memory is an in-process Cache for tests and ephemeral tooling.
type Memory struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{sets: make(map[string]map[string]struct{})}
}

// ReadAll implements Cache.
func (m *Memory) ReadAll(_ context.Context, namespace string) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]struct{}, len(m.sets[namespace]))
	for k := range m.sets[namespace] {
		out[k] = struct{}{}
	}
	return out, nil
}

// WriteAll implements Cache.
func (m *Memory) WriteAll(_ context.Context, namespace string, items map[string]struct{}) error {
	set := make(map[string]struct{}, len(items))
	for k := range items {
		set[k] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[namespace] = set
	return nil
}
