package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/dependents/pkg/domain"
)

var (
	// ErrUnknownDependency is returned by Build when a node depends on a name
	// that was never added.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrMissingFunction is returned by Build when a node declares
	// dependencies but no function to combine them.
	ErrMissingFunction = errors.New("node has dependencies but no function")

	// ErrLeafWithDependencies is returned by Build when a constant or a
	// datasource declares dependencies.
	ErrLeafWithDependencies = errors.New("leaf node cannot have dependencies")
)

// Builder manages the graph construction.
// Nodes reference each other by name, so they can be added in any order.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(name string) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	nb := &NodeBuilder{name: name}
	b.nodes[name] = nb
	b.order = append(b.order, name)
	return nb
}

// Has reports whether name was added.
func (b *Builder) Has(name string) bool {
	_, ok := b.nodes[name]
	return ok
}

// Build wires the dependents together and returns the graph.
// Dependency cycles are not rejected here; they surface when solving.
func (b *Builder) Build() (*domain.Graph, error) {
	built := make(map[string]domain.Dependent, len(b.order))
	funcs := make(map[string]*domain.Func)

	for _, name := range b.order {
		nb := b.nodes[name]
		switch nb.kind {
		case kindConstant:
			if len(nb.deps) > 0 {
				return nil, fmt.Errorf("%s: %w", name, ErrLeafWithDependencies)
			}
			built[name] = domain.NewConstant(name, nb.value)
		case kindFunc:
			f := domain.NewFunc(name, nb.fn)
			funcs[name] = f
			built[name] = f
		default:
			if len(nb.deps) > 0 {
				if nb.kind == kindDatasource {
					return nil, fmt.Errorf("%s: %w", name, ErrLeafWithDependencies)
				}
				return nil, fmt.Errorf("%s: %w", name, ErrMissingFunction)
			}
			built[name] = domain.NewDatasource(name)
		}
	}

	for name, f := range funcs {
		for _, dep := range b.nodes[name].deps {
			d, ok := built[dep]
			if !ok {
				return nil, fmt.Errorf("%s depends on %q: %w", name, dep, ErrUnknownDependency)
			}
			f.Deps = append(f.Deps, d)
		}
	}

	nodes := make([]domain.Dependent, 0, len(b.order))
	for _, name := range b.order {
		nodes = append(nodes, built[name])
	}

	graph, err := domain.NewGraph(nodes...)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return graph, nil
}
