package schema

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when a graph file extension is not recognized.
var ErrUnsupportedFormat = errors.New("unsupported graph format")

// ValidationError represents a single node definition failure.
type ValidationError struct {
	Node   string // Node name
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	if e.Node == "" {
		return e.Reason
	}
	return fmt.Sprintf("node %q: %s", e.Node, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
