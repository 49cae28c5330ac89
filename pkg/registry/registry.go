package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/dependents/pkg/domain"
	"github.com/aretw0/dependents/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// ErrUnknownOperator is returned by Build when no factory is registered under a name.
var ErrUnknownOperator = errors.New("unknown operator")

// Call carries what a factory needs to build a node function.
type Call struct {
	// Node is the key of the node being built.
	Node string
	// Args are the raw operator arguments from the graph definition.
	Args map[string]any
	// Source is the value source configured on the registry, if any.
	Source ports.ValueSource
}

// Decode decodes the call arguments into out using mapstructure.
// Unknown arguments are rejected.
func (c Call) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(c.Args); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", c.Node, err)
	}
	return nil
}

// Factory builds the invocation function of a node.
// A nil function with a nil error marks the node as a datasource.
type Factory func(call Call) (domain.InvokeFunc, error)

// Registry manages the available operators.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	source    ports.ValueSource
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// NewDefault creates a registry holding the built-in operators.
func NewDefault() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register adds an operator to the registry.
// If an operator with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// SetSource configures the value source handed to factories.
func (r *Registry) SetSource(source ports.ValueSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = source
}

// Has reports whether an operator is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered operator names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Build looks up an operator by name and builds the function for node.
// Returns an error if the operator is not found.
func (r *Registry) Build(op, node string, args map[string]any) (domain.InvokeFunc, error) {
	r.mu.RLock()
	fn, ok := r.factories[op]
	source := r.source
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, op)
	}

	return fn(Call{Node: node, Args: args, Source: source})
}
