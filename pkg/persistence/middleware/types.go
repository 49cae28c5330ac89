package middleware

import "github.com/aretw0/dependents/pkg/ports"

// Middleware allows wrapping a ValueSource to add behavior.
type Middleware func(ports.ValueSource) ports.ValueSource

// Chain applies middlewares so that the first one is the outermost.
func Chain(source ports.ValueSource, mws ...Middleware) ports.ValueSource {
	for i := len(mws) - 1; i >= 0; i-- {
		source = mws[i](source)
	}
	return source
}
