package dependents

import (
	"context"
	_ "embed"
	"io"
	"iter"
	"log/slog"

	"github.com/aretw0/dependents/internal/runtime"
	"github.com/aretw0/dependents/pkg/domain"
)

// Version is the library version, taken from the VERSION file.
//
//go:embed VERSION
var Version string

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and normalizes per-call arguments.
type Engine struct {
	runtime *runtime.Engine
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	runIDs  func() string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRunIDGenerator overrides the run IDs attached to hook events.
func WithRunIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.runIDs = fn
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithRunIDGenerator(eng.runIDs),
	)
	return eng
}

// CallOption configures a single Solve, Expand, Dig or Draw call.
type CallOption func(*call)

type call struct {
	context any
	cache   domain.Cache
	seen    domain.Seen
	depth   int
}

// WithContext supplies substitutions: nil, a domain.Context (or
// map[string]domain.Dependent), or a collection of dependents that stand in
// for themselves. Anything else makes the call fail with a
// *domain.ConfigurationError.
func WithContext(c any) CallOption {
	return func(cl *call) {
		cl.context = c
	}
}

// WithCache supplies a cache. Solve fills it in place.
// Expand, Dig and Draw treat its keys as already seen, without modifying it.
func WithCache(c domain.Cache) CallOption {
	return func(cl *call) {
		cl.cache = c
	}
}

// WithSeen supplies the seen-set for Expand, Dig and Draw.
// Expand and Dig extend it in place. It takes precedence over WithCache.
func WithSeen(s domain.Seen) CallOption {
	return func(cl *call) {
		cl.seen = s
	}
}

// WithDepth sets the indentation level Draw starts at.
func WithDepth(depth int) CallOption {
	return func(cl *call) {
		cl.depth = depth
	}
}

func newCall(opts []CallOption) (*call, domain.Context, error) {
	cl := &call{}
	for _, opt := range opts {
		opt(cl)
	}
	cctx, err := runtime.NormalizeContext(cl.context)
	if err != nil {
		return nil, nil, err
	}
	return cl, cctx, nil
}

func (cl *call) seenSet() domain.Seen {
	switch {
	case cl.seen != nil:
		return cl.seen
	case cl.cache != nil:
		return cl.cache.Seen()
	default:
		return domain.Seen{}
	}
}

// Solve computes the value of node, resolving its dependencies first.
func (e *Engine) Solve(ctx context.Context, node domain.Dependent, opts ...CallOption) (any, error) {
	cl, cctx, err := newCall(opts)
	if err != nil {
		return nil, err
	}
	return e.runtime.Solve(ctx, node, cctx, cl.cache)
}

// SolveAll returns a lazy, single-pass sequence of the values of nodes, in
// order. Errors in the options are returned immediately; resolution errors
// are yielded by the sequence, which then stops.
func (e *Engine) SolveAll(ctx context.Context, nodes []domain.Dependent, opts ...CallOption) (iter.Seq2[any, error], error) {
	cl, cctx, err := newCall(opts)
	if err != nil {
		return nil, err
	}
	return e.runtime.SolveAll(ctx, nodes, cctx, cl.cache), nil
}

// Expand returns every dependent reachable from nodes, once each, in
// depth-first pre-order. The context option is validated but not applied:
// dependents are listed under their original keys.
func (e *Engine) Expand(nodes []domain.Dependent, opts ...CallOption) (iter.Seq[domain.Dependent], error) {
	cl, _, err := newCall(opts)
	if err != nil {
		return nil, err
	}
	return e.runtime.Expand(nodes, cl.seenSet()), nil
}

// ExpandOne is Expand for a single root.
func (e *Engine) ExpandOne(node domain.Dependent, opts ...CallOption) (iter.Seq[domain.Dependent], error) {
	return e.Expand([]domain.Dependent{node}, opts...)
}

// Dig returns the leaves reachable from nodes, once each, after context
// substitution.
func (e *Engine) Dig(nodes []domain.Dependent, opts ...CallOption) (iter.Seq[domain.Dependent], error) {
	cl, cctx, err := newCall(opts)
	if err != nil {
		return nil, err
	}
	return e.runtime.Dig(nodes, cctx, cl.seenSet()), nil
}

// Draw renders the dependency tree of node for debugging.
// Dependents already seen (or cached) are marked CACHED and not expanded.
func (e *Engine) Draw(node domain.Dependent, opts ...CallOption) (string, error) {
	cl, cctx, err := newCall(opts)
	if err != nil {
		return "", err
	}
	return e.runtime.Draw(node, cctx, cl.seenSet(), cl.depth), nil
}

var defaultEngine = New()

// Solve resolves node with a default engine.
func Solve(ctx context.Context, node domain.Dependent, opts ...CallOption) (any, error) {
	return defaultEngine.Solve(ctx, node, opts...)
}

// SolveAll resolves nodes lazily with a default engine.
func SolveAll(ctx context.Context, nodes []domain.Dependent, opts ...CallOption) (iter.Seq2[any, error], error) {
	return defaultEngine.SolveAll(ctx, nodes, opts...)
}

// Expand lists reachable dependents with a default engine.
func Expand(nodes []domain.Dependent, opts ...CallOption) (iter.Seq[domain.Dependent], error) {
	return defaultEngine.Expand(nodes, opts...)
}

// Dig lists reachable leaves with a default engine.
func Dig(nodes []domain.Dependent, opts ...CallOption) (iter.Seq[domain.Dependent], error) {
	return defaultEngine.Dig(nodes, opts...)
}

// Draw renders a dependency tree with a default engine.
func Draw(node domain.Dependent, opts ...CallOption) (string, error) {
	return defaultEngine.Draw(node, opts...)
}
