package ports

import "context"

// ValueSource supplies values for datasource and lookup nodes from outside
// the graph. Values stored by remote sources round-trip through JSON, so
// numbers may come back as float64.
type ValueSource interface {
	// Get retrieves the value stored under key.
	// Returns domain.ErrValueNotFound if the key has no value.
	Get(ctx context.Context, key string) (any, error)

	// Set stores a value under key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error

	// Delete removes the value stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently holding a value.
	List(ctx context.Context) ([]string, error)
}
