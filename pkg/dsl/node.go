package dsl

import "github.com/aretw0/dependents/pkg/domain"

type nodeKind int

const (
	kindUnset nodeKind = iota
	kindFunc
	kindConstant
	kindDatasource
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	name  string
	kind  nodeKind
	deps  []string
	fn    domain.InvokeFunc
	value any
}

// DependsOn appends dependencies by name. Order is the argument order the
// node's function receives.
func (n *NodeBuilder) DependsOn(names ...string) *NodeBuilder {
	n.deps = append(n.deps, names...)
	return n
}

// Func sets the function computing the node from its dependencies.
func (n *NodeBuilder) Func(fn domain.InvokeFunc) *NodeBuilder {
	n.kind = kindFunc
	n.fn = fn
	return n
}

// Const makes the node a leaf with a fixed value.
func (n *NodeBuilder) Const(value any) *NodeBuilder {
	n.kind = kindConstant
	n.value = value
	return n
}

// Datasource makes the node a placeholder whose value is supplied by the
// caller through the cache or a context.
func (n *NodeBuilder) Datasource() *NodeBuilder {
	n.kind = kindDatasource
	return n
}

// Name returns the node name.
func (n *NodeBuilder) Name() string {
	return n.name
}

// Dependencies returns the declared dependency names.
func (n *NodeBuilder) Dependencies() []string {
	return n.deps
}
