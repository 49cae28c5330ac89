package runtime

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/aretw0/dependents/pkg/domain"
)

// Solve resolves node against cctx, memoizing every computed value in cache.
// A nil cache is replaced by a throwaway one.
//
// Values are cached under the key that was requested (before substitution)
// and, when a substitute was invoked, under the substitute's key as well.
func (e *Engine) Solve(ctx context.Context, node domain.Dependent, cctx domain.Context, cache domain.Cache) (any, error) {
	if cache == nil {
		cache = domain.NewCache()
	}
	r := &resolution{
		ctx:     ctx,
		engine:  e,
		context: cctx,
		cache:   cache,
		history: make(map[string]struct{}),
		runID:   e.newRunID(),
	}
	return r.run(node)
}

// SolveAll returns a pull sequence resolving each node in order.
// Every element is an independent top-level resolution with its own history;
// all of them share cache. The sequence stops after the first error.
// It is single-pass: ranging it again yields ErrSequenceConsumed.
func (e *Engine) SolveAll(ctx context.Context, nodes []domain.Dependent, cctx domain.Context, cache domain.Cache) iter.Seq2[any, error] {
	if cache == nil {
		cache = domain.NewCache()
	}
	consumed := false
	return func(yield func(any, error) bool) {
		if consumed {
			yield(nil, domain.ErrSequenceConsumed)
			return
		}
		consumed = true
		for _, n := range nodes {
			v, err := e.Solve(ctx, n, cctx, cache)
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// frame is a dependent whose dependencies are being resolved.
type frame struct {
	reqKey string // key as requested, before substitution
	node   domain.Dependent
	inv    domain.Invoker
	deps   []domain.Dependent
	args   []any
	start  time.Time
}

type resolution struct {
	ctx     context.Context
	engine  *Engine
	context domain.Context
	cache   domain.Cache
	history map[string]struct{} // keys on the active path
	runID   string
	stack   []*frame
}

// run walks the graph with an explicit stack. The visiting order matches a
// recursive depth-first resolution.
func (r *resolution) run(root domain.Dependent) (any, error) {
	v, settled, err := r.open(root)
	if err != nil || settled {
		return v, err
	}

	for {
		top := r.stack[len(r.stack)-1]
		if len(top.args) < len(top.deps) {
			v, settled, err := r.open(top.deps[len(top.args)])
			if err != nil {
				return nil, err
			}
			if settled {
				top.args = append(top.args, v)
			}
			continue
		}

		v, err := r.invoke(top)
		if err != nil {
			return nil, err
		}
		r.stack = r.stack[:len(r.stack)-1]
		delete(r.history, top.node.Key())

		if len(r.stack) == 0 {
			return v, nil
		}
		parent := r.stack[len(r.stack)-1]
		parent.args = append(parent.args, v)
	}
}

// open settles d from the cache when possible. Otherwise it validates the
// (possibly substituted) dependent and pushes a frame for it.
func (r *resolution) open(d domain.Dependent) (any, bool, error) {
	key := d.Key()
	if v, ok := r.cache[key]; ok {
		r.cacheHit(key)
		return v, true, nil
	}

	node := r.context.Lookup(d)
	nodeKey := node.Key()
	if nodeKey != key {
		if v, ok := r.cache[nodeKey]; ok {
			r.cache[key] = v
			r.cacheHit(nodeKey)
			return v, true, nil
		}
	}

	inv, ok := domain.AsInvoker(node)
	if !ok {
		return nil, false, &domain.InvalidNodeError{Key: domain.Describe(node), Type: fmt.Sprintf("%T", node)}
	}
	if _, loop := r.history[nodeKey]; loop {
		return nil, false, &domain.DependencyLoopError{Key: domain.Describe(node)}
	}
	r.history[nodeKey] = struct{}{}

	deps := node.Dependencies()
	f := &frame{
		reqKey: key,
		node:   node,
		inv:    inv,
		deps:   deps,
		args:   make([]any, 0, len(deps)),
		start:  time.Now(),
	}
	r.stack = append(r.stack, f)
	r.emit(r.engine.hooks.OnNodeEnter, domain.EventNodeEnter, nodeKey, 0, nil)
	return nil, false, nil
}

func (r *resolution) invoke(f *frame) (any, error) {
	key := f.node.Key()
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}

	r.engine.logger.Debug("invoking dependent", "node", key, "deps", len(f.deps), "run_id", r.runID)
	v, err := safeInvoke(r.ctx, f.inv, f.args)
	if err != nil {
		derr := domain.NewDependencyError(domain.Describe(f.node), err)
		r.engine.logger.Debug("dependent failed", "node", key, "err", err, "run_id", r.runID)
		r.emit(r.engine.hooks.OnNodeError, domain.EventNodeError, key, time.Since(f.start), derr)
		return nil, derr
	}

	r.cache[f.reqKey] = v
	if key != f.reqKey {
		r.cache[key] = v
	}
	r.emit(r.engine.hooks.OnNodeLeave, domain.EventNodeLeave, key, time.Since(f.start), nil)
	return v, nil
}

func (r *resolution) cacheHit(key string) {
	r.engine.logger.Debug("cache hit", "node", key, "run_id", r.runID)
	r.emit(r.engine.hooks.OnCacheHit, domain.EventCacheHit, key, 0, nil)
}

func (r *resolution) emit(hook func(context.Context, *domain.NodeEvent), typ domain.EventType, key string, d time.Duration, err error) {
	if hook == nil {
		return
	}
	hook(r.ctx, &domain.NodeEvent{
		Timestamp: time.Now(),
		Type:      typ,
		RunID:     r.runID,
		Key:       key,
		Depth:     max(len(r.stack)-1, 0),
		Duration:  d,
		Err:       err,
	})
}

// safeInvoke converts a panic raised by a dependent into an error.
func safeInvoke(ctx context.Context, inv domain.Invoker, args []any) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return inv.Invoke(ctx, args)
}
