package domain

import (
	"context"
	"fmt"
)

// Dependent is a unit of computation in the graph.
// Key is the stable identity used by caches, contexts and seen-sets.
// A nil or empty Dependencies slice marks the dependent as a leaf.
type Dependent interface {
	Key() string
	Dependencies() []Dependent
}

// Invoker is implemented by dependents that can produce a value.
// Args holds the resolved values of Dependencies, in declared order.
type Invoker interface {
	Invoke(ctx context.Context, args []any) (any, error)
}

// InvokeFunc adapts a plain function to the invocation contract.
type InvokeFunc func(ctx context.Context, args []any) (any, error)

// Func is a dependent computed from its dependencies.
// A Func with no dependencies is a leaf computation.
type Func struct {
	Name string
	Deps []Dependent
	Fn   InvokeFunc
}

// NewFunc creates a Func dependent.
func NewFunc(name string, fn InvokeFunc, deps ...Dependent) *Func {
	return &Func{Name: name, Deps: deps, Fn: fn}
}

func (f *Func) Key() string               { return f.Name }
func (f *Func) Dependencies() []Dependent { return f.Deps }
func (f *Func) String() string            { return f.Name }

// Invoke calls the underlying function. A Func without one is not callable.
func (f *Func) Invoke(ctx context.Context, args []any) (any, error) {
	if f.Fn == nil {
		return nil, &InvalidNodeError{Key: f.Name, Type: fmt.Sprintf("%T", f)}
	}
	return f.Fn(ctx, args)
}

// Constant is a leaf that always returns the same value.
type Constant struct {
	Name  string
	Value any
}

// NewConstant creates a Constant dependent.
func NewConstant(name string, value any) *Constant {
	return &Constant{Name: name, Value: value}
}

func (c *Constant) Key() string               { return c.Name }
func (c *Constant) Dependencies() []Dependent { return nil }
func (c *Constant) String() string            { return c.Name }

func (c *Constant) Invoke(context.Context, []any) (any, error) {
	return c.Value, nil
}

// Datasource is a placeholder leaf with no way to compute itself.
// Its value must be seeded into the Cache or replaced through a Context.
type Datasource struct {
	Name string
}

// NewDatasource creates a Datasource placeholder.
func NewDatasource(name string) *Datasource {
	return &Datasource{Name: name}
}

func (d *Datasource) Key() string               { return d.Name }
func (d *Datasource) Dependencies() []Dependent { return nil }
func (d *Datasource) String() string            { return d.Name }

// Describe returns the human-readable description of a dependent.
// Stringers are honoured; anything else falls back to its key.
func Describe(d Dependent) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return d.Key()
}

// AsInvoker returns d as an Invoker, or false when d cannot produce a value.
func AsInvoker(d Dependent) (Invoker, bool) {
	inv, ok := d.(Invoker)
	if !ok {
		return nil, false
	}
	if f, isFunc := inv.(*Func); isFunc && f.Fn == nil {
		return nil, false
	}
	return inv, true
}

// IsLeaf reports whether the dependent declares no dependencies.
func IsLeaf(d Dependent) bool {
	return len(d.Dependencies()) == 0
}

var (
	_ Invoker = (*Func)(nil)
	_ Invoker = (*Constant)(nil)
)
