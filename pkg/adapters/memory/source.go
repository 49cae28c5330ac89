package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/dependents/pkg/domain"
)

// Source implements ports.ValueSource in memory.
// Safe for concurrent use.
type Source struct {
	data map[string]any
	mu   sync.RWMutex
}

// NewSource creates a new in-memory source, optionally seeded with values.
func NewSource(seed map[string]any) *Source {
	data := make(map[string]any, len(seed))
	maps.Copy(data, seed)
	return &Source{data: data}
}

// Get retrieves a value from memory.
func (s *Source) Get(ctx context.Context, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrValueNotFound
	}
	return v, nil
}

// Set stores a value in memory.
func (s *Source) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete removes a value.
func (s *Source) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys, sorted.
func (s *Source) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data)), nil
}
