package runtime_test

import (
	"context"

	"github.com/aretw0/dependents/pkg/domain"
)

// counter records how many times each dependent was invoked.
type counter map[string]int

// fn builds a counted Func that applies op to int arguments.
func (c counter) fn(name string, op func(args []int) int, deps ...domain.Dependent) *domain.Func {
	return domain.NewFunc(name, func(_ context.Context, args []any) (any, error) {
		c[name]++
		ints := make([]int, len(args))
		for i, a := range args {
			ints[i] = a.(int)
		}
		return op(ints), nil
	}, deps...)
}

// diamond builds the reference graph: A = B + C, B = 2D, C = 3D, D = 5.
func diamond(c counter) (a, b, cc, d *domain.Func) {
	d = c.fn("d", func([]int) int { return 5 })
	b = c.fn("b", func(x []int) int { return x[0] * 2 }, d)
	cc = c.fn("c", func(x []int) int { return x[0] * 3 }, d)
	a = c.fn("a", func(x []int) int { return x[0] + x[1] }, b, cc)
	return a, b, cc, d
}

func keys(ds []domain.Dependent) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Key()
	}
	return out
}
