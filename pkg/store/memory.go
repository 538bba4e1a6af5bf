package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/tilegrid/pkg/project"
)

// MemoryStore keeps encoded projects in a map. Projects are copied on the way
// in and out, so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Get returns a copy of the named project.
func (s *MemoryStore) Get(ctx context.Context, name string) (*project.Project, error) {
	s.mu.RLock()
	data, ok := s.docs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

// Put stores a copy of p.
func (s *MemoryStore) Put(ctx context.Context, p *project.Project) error {
	data, err := encode(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[p.Name] = data
	s.mu.Unlock()
	return nil
}

// Delete removes the named project.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[name]; !ok {
		return ErrNotFound
	}
	delete(s.docs, name)
	return nil
}

// List returns the stored project names in ascending order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	s.mu.RUnlock()
	slices.Sort(names)
	return names, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
