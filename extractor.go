package dependents

import (
	"context"
	"iter"
	"maps"

	"github.com/aretw0/dependents/pkg/domain"
)

// Extractor solves a fixed list of targets for many items.
// Each item gets its own cache, seeded with the item's known values, so
// shared upstream values are computed once per item and never leak between
// items.
type Extractor struct {
	engine  *Engine
	targets []domain.Dependent
	opts    []CallOption
}

// NewExtractor creates an Extractor for targets.
// opts are applied to every item; a WithCache option is ignored.
func NewExtractor(engine *Engine, targets []domain.Dependent, opts ...CallOption) *Extractor {
	if engine == nil {
		engine = defaultEngine
	}
	return &Extractor{engine: engine, targets: targets, opts: opts}
}

// Targets returns the dependents solved for every item.
func (x *Extractor) Targets() []domain.Dependent {
	return x.targets
}

// Extract solves every target for one item. seed is copied, not modified.
// The returned values follow the order of the targets.
func (x *Extractor) Extract(ctx context.Context, seed domain.Cache) ([]any, error) {
	cache := maps.Clone(seed)
	if cache == nil {
		cache = domain.NewCache()
	}
	opts := append(append([]CallOption{}, x.opts...), WithCache(cache))

	seq, err := x.engine.SolveAll(ctx, x.targets, opts...)
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(x.targets))
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// ExtractAll extracts every item lazily. A failing item yields its error and
// extraction moves on to the next item.
func (x *Extractor) ExtractAll(ctx context.Context, items iter.Seq[domain.Cache]) iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		for seed := range items {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(x.Extract(ctx, seed)) {
				return
			}
		}
	}
}
