package domain

import (
	"fmt"
	"slices"
)

// Graph is a named collection of dependents, in declaration order.
type Graph struct {
	nodes map[string]Dependent
	order []string
}

// NewGraph creates a graph from dependents. Keys must be unique.
func NewGraph(nodes ...Dependent) (*Graph, error) {
	g := &Graph{nodes: make(map[string]Dependent, len(nodes))}
	for _, n := range nodes {
		if n.Key() == "" {
			return nil, fmt.Errorf("dependent key must not be empty")
		}
		if _, dup := g.nodes[n.Key()]; dup {
			return nil, fmt.Errorf("duplicate dependent %q", n.Key())
		}
		g.nodes[n.Key()] = n
		g.order = append(g.order, n.Key())
	}
	return g, nil
}

// Get returns the dependent registered under key.
func (g *Graph) Get(key string) (Dependent, bool) {
	d, ok := g.nodes[key]
	return d, ok
}

// Lookup returns the dependents for keys, failing on the first unknown key.
func (g *Graph) Lookup(keys ...string) ([]Dependent, error) {
	out := make([]Dependent, 0, len(keys))
	for _, k := range keys {
		d, ok := g.nodes[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, k)
		}
		out = append(out, d)
	}
	return out, nil
}

// Keys returns the keys in declaration order.
func (g *Graph) Keys() []string {
	return slices.Clone(g.order)
}

// Nodes returns the dependents in declaration order.
func (g *Graph) Nodes() []Dependent {
	out := make([]Dependent, len(g.order))
	for i, k := range g.order {
		out[i] = g.nodes[k]
	}
	return out
}

// Len returns the number of dependents.
func (g *Graph) Len() int {
	return len(g.order)
}

// Substitutions builds a context mapping each key to the graph node named by
// its substitute.
func (g *Graph) Substitutions(mapping map[string]string) (Context, error) {
	c := make(Context, len(mapping))
	for key, sub := range mapping {
		d, ok := g.nodes[sub]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, sub)
		}
		c[key] = d
	}
	return c, nil
}
