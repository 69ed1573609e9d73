// Package heapstore is an in-memory storage facility. Values live only as
// long as the process; it serves tests and acts as a volatile scratch store.
package heapstore

import (
	"context"
	"sync"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/storage"
)

type entry struct {
	path  registry.Path
	value registry.Value
}

// Store keeps saved values in a map keyed by textual path.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Load calls fn for every stored value under p in path order.
func (s *Store) Load(ctx context.Context, p registry.Path, fn registry.LoadFunc) error {
	for _, e := range s.snapshot(p) {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = fn(e.path, e.value)
	}
	return nil
}

func (s *Store) snapshot(p registry.Path) []entry {
	s.mu.RLock()
	out := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		if p.Contains(e.path) {
			out = append(out, entry{e.path, e.value.Clone()})
		}
	}
	s.mu.RUnlock()

	paths := make([]registry.Path, len(out))
	byPath := make(map[string]entry, len(out))
	for i, e := range out {
		paths[i] = e.path
		byPath[e.path.String()] = e
	}
	storage.SortPaths(paths)
	for i, p := range paths {
		out[i] = byPath[p.String()]
	}
	return out
}

// Save stores a copy of v at p.
func (s *Store) Save(_ context.Context, p registry.Path, v registry.Value) error {
	s.mu.Lock()
	s.entries[p.String()] = entry{p, v.Clone()}
	s.mu.Unlock()
	return nil
}

// Lookup returns a copy of the value stored at p.
func (s *Store) Lookup(_ context.Context, p registry.Path) (registry.Value, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[p.String()]
	s.mu.RUnlock()
	if !ok {
		return registry.Value{}, false, nil
	}
	return e.value.Clone(), true, nil
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
