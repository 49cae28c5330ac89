package runtime

import (
	"iter"

	"github.com/aretw0/dependents/pkg/domain"
)

// Dig yields the leaves reachable from nodes: dependents with no
// dependencies of their own. Each leaf is yielded once.
//
// Before a dependent is recursed into, it is replaced through cctx and both
// its original and substituted keys are marked in seen. A dependent whose
// key is already in seen is not scanned again.
func (e *Engine) Dig(nodes []domain.Dependent, cctx domain.Context, seen domain.Seen) iter.Seq[domain.Dependent] {
	if seen == nil {
		seen = domain.Seen{}
	}
	return func(yield func(domain.Dependent) bool) {
		stack := reversed(nodes)
		for len(stack) > 0 {
			d := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if seen.Has(d.Key()) {
				continue
			}
			sub := cctx.Lookup(d)
			seen.Add(d.Key())
			seen.Add(sub.Key())

			if domain.IsLeaf(sub) {
				if !yield(sub) {
					return
				}
				continue
			}
			stack = append(stack, reversed(sub.Dependencies())...)
		}
	}
}
