// Package prefs persists small UI preferences. Every operation reports
// failure explicitly; callers decide whether a failure matters (for the
// theme it never does).
package prefs

import (
	"context"
	"errors"
	"sync"
)

// ThemeKey stores the day/night theme.
const ThemeKey = "himalayan-theme"

var ErrNotFound = errors.New("preference not set")

// Store is a narrow string key-value capability.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore keeps preferences for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
