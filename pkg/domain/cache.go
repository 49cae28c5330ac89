package domain

import (
	"maps"
	"slices"
)

// Cache maps dependent keys to already computed values.
// It is owned by the caller and may be shared across resolution calls.
// The engine mutates it in place; it provides no locking.
type Cache map[string]any

// NewCache returns an empty cache.
func NewCache() Cache {
	return make(Cache)
}

// Has reports whether key has a value.
func (c Cache) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Keys returns the cached keys in sorted order.
func (c Cache) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Seen returns a new seen-set holding every cached key.
func (c Cache) Seen() Seen {
	s := make(Seen, len(c))
	for k := range c {
		s[k] = struct{}{}
	}
	return s
}

// Seen is a set of keys already visited by a traversal.
// Like Cache, it may be reused across calls to continue a traversal.
type Seen map[string]struct{}

// NewSeen returns a seen-set holding keys.
func NewSeen(keys ...string) Seen {
	s := make(Seen, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key was visited.
func (s Seen) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add marks key as visited.
func (s Seen) Add(key string) {
	s[key] = struct{}{}
}

// Context redirects dependent keys to substitute dependents.
// Substitution is applied at each lookup, never baked into the graph.
type Context map[string]Dependent

// Lookup returns the substitute for d, or d itself.
func (c Context) Lookup(d Dependent) Dependent {
	if sub, ok := c[d.Key()]; ok {
		return sub
	}
	return d
}
