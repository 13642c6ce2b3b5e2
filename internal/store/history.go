package store

import (
	"errors"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no recent selection has the given name.
	ErrNotFound = errors.New("place not in recent selections")
)

// HistoryStore is a concurrency-safe, in-memory list of recently selected
// places in insertion order. Names are unique: membership is an exact name
// match, coordinates are not compared.
type HistoryStore struct {
	mu sync.RWMutex

	places []weather.Place

	// max number of remembered places (0 = unlimited)
	maxHistory int
}

// NewHistoryStore creates a new HistoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewHistoryStore(maxHistory int) *HistoryStore {
	return &HistoryStore{maxHistory: maxHistory}
}

// Add appends p unless a place with the same name is already present. It
// reports whether p was added.
func (s *HistoryStore) Add(p weather.Place) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.places {
		if existing.Name == p.Name {
			return false
		}
	}
	s.places = append(s.places, p)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.places) > s.maxHistory {
		over := len(s.places) - s.maxHistory
		s.places = s.places[over:]
	}
	return true
}

// Get returns the remembered place with the given name.
func (s *HistoryStore) Get(name string) (weather.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.places {
		if p.Name == name {
			return p, nil
		}
	}
	return weather.Place{}, ErrNotFound
}

// List returns a copy of the remembered places, oldest first.
func (s *HistoryStore) List() []weather.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Place, len(s.places))
	copy(out, s.places)
	return out
}
