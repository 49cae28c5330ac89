package domain

import (
	"errors"
	"fmt"
)

// Sentinel categories. Each typed error below matches its category via errors.Is.
var (
	ErrConfiguration  = errors.New("invalid configuration")
	ErrDependencyLoop = errors.New("dependency loop")
	ErrInvalidNode    = errors.New("invalid node")
	ErrDependency     = errors.New("dependency failed")
)

// ErrSequenceConsumed is yielded when a single-pass sequence is ranged twice.
var ErrSequenceConsumed = errors.New("sequence already consumed")

// ErrValueNotFound is returned by value sources when a key has no value.
var ErrValueNotFound = errors.New("value not found")

// ErrUnknownNode is returned when a key does not name a dependent of a graph.
var ErrUnknownNode = errors.New("unknown node")

// ConfigurationError reports a context argument that is neither a mapping nor a collection.
type ConfigurationError struct {
	Value any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("context is not a mapping or collection of dependents: %v", e.Value)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DependencyLoopError reports a key that reappeared on the active resolution path.
type DependencyLoopError struct {
	Key string
}

func (e *DependencyLoopError) Error() string {
	return fmt.Sprintf("dependency loop detected at %s", e.Key)
}

func (e *DependencyLoopError) Is(target error) bool { return target == ErrDependencyLoop }

// InvalidNodeError reports a dependent that is neither cached nor invocable.
type InvalidNodeError struct {
	Key  string
	Type string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("can't solve dependency %s: %s is not callable", e.Key, e.Type)
}

func (e *InvalidNodeError) Is(target error) bool { return target == ErrInvalidNode }

// DependencyError wraps a failure raised while invoking a dependent.
// Message keeps the inner error text; Err keeps the inner error itself.
type DependencyError struct {
	Node    string
	Message string
	Err     error
}

// NewDependencyError wraps err raised by node.
func NewDependencyError(node string, err error) *DependencyError {
	return &DependencyError{Node: node, Message: err.Error(), Err: err}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("failed to process %s: %s", e.Node, e.Message)
}

func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

func (e *DependencyError) Unwrap() error { return e.Err }
