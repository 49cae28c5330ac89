package schema

import (
	"fmt"

	"github.com/aretw0/dependents/pkg/domain"
	"github.com/aretw0/dependents/pkg/dsl"
	"github.com/aretw0/dependents/pkg/registry"
)

// Validate checks the definition against the operators of reg.
// All failures are collected into an *AggregateError.
func Validate(def *Definition, reg *registry.Registry) error {
	var errs []error
	fail := func(node, format string, args ...any) {
		errs = append(errs, &ValidationError{Node: node, Reason: fmt.Sprintf(format, args...)})
	}

	if len(def.Nodes) == 0 {
		fail("", "graph has no nodes")
	}

	names := make(map[string]bool, len(def.Nodes))
	for _, n := range def.Nodes {
		if n.Name == "" {
			fail("", "node name is required")
			continue
		}
		if names[n.Name] {
			fail(n.Name, "duplicate node")
		}
		names[n.Name] = true
	}

	for _, n := range def.Nodes {
		if n.Name == "" {
			continue
		}
		op := n.Operator()
		switch {
		case op == "":
			fail(n.Name, "op is required for nodes with dependencies")
		case !reg.Has(op):
			fail(n.Name, "unknown op %q", op)
		}
		for _, dep := range n.Deps {
			if !names[dep] {
				fail(n.Name, "unknown dependency %q", dep)
			}
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Compile validates the definition and builds the graph, creating each node
// function through reg.
func Compile(def *Definition, reg *registry.Registry) (*domain.Graph, error) {
	if err := Validate(def, reg); err != nil {
		return nil, err
	}

	b := dsl.New()
	for _, n := range def.Nodes {
		fn, err := reg.Build(n.Operator(), n.Name, n.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to build node %s: %w", n.Name, err)
		}

		nb := b.Add(n.Name).DependsOn(n.Deps...)
		if fn == nil {
			nb.Datasource()
		} else {
			nb.Func(fn)
		}
	}

	return b.Build()
}

// LoadGraph loads a graph file and compiles it with reg.
func LoadGraph(path string, reg *registry.Registry) (*Definition, *domain.Graph, error) {
	def, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	graph, err := Compile(def, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, graph, nil
}
