package runtime

import (
	"iter"
	"slices"

	"github.com/aretw0/dependents/pkg/domain"
)

// Expand yields every dependent reachable from nodes exactly once, in
// depth-first pre-order (a dependent before its dependencies).
//
// Keys already in seen are skipped; yielded keys are added to it, so a seen
// set can be carried across calls. A nil seen starts empty.
//
// Dependents are enumerated by their original keys: context substitution is
// not applied here, unlike Solve and Dig.
func (e *Engine) Expand(nodes []domain.Dependent, seen domain.Seen) iter.Seq[domain.Dependent] {
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
			seen.Add(d.Key())
			if !yield(d) {
				return
			}
			stack = append(stack, reversed(d.Dependencies())...)
		}
	}
}

// reversed returns a reversed copy, so that popping from the end of a stack
// visits ds in declared order.
func reversed(ds []domain.Dependent) []domain.Dependent {
	out := slices.Clone(ds)
	slices.Reverse(out)
	return out
}
