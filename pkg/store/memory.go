package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	cityio "github.com/matzehuels/streetblock/pkg/io"
)

// MemoryStore holds snapshots in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	cities map[string]cityio.City
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cities: make(map[string]cityio.City)}
}

func (s *MemoryStore) Save(_ context.Context, c *cityio.City) error {
	if err := checkID(c.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities[c.ID] = clone(*c)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*cityio.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cities[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = clone(c)
	return &c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cities[id]; !ok {
		return ErrNotFound
	}
	delete(s.cities, id)
	return nil
}

func (s *MemoryStore) List(context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(s.cities))
	out := make([]Summary, len(ids))
	for i, id := range ids {
		c := s.cities[id]
		out[i] = Summarize(&c)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// clone deep-copies c so callers cannot alias stored data.
func clone(c cityio.City) cityio.City {
	c.Points = slices.Clone(c.Points)
	c.Cells = slices.Clone(c.Cells)
	c.Lots = slices.Clone(c.Lots)
	for i, l := range c.Lots {
		if l.Center != nil {
			v := *l.Center
			c.Lots[i].Center = &v
		}
	}
	return c
}

var _ Store = (*MemoryStore)(nil)
