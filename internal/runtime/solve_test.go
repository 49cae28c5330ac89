package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/dependents/internal/runtime"
	"github.com/aretw0/dependents/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Solve_Diamond(t *testing.T) {
	calls := counter{}
	a, _, _, _ := diamond(calls)
	engine := runtime.NewEngine()
	cache := domain.NewCache()

	v, err := engine.Solve(context.Background(), a, nil, cache)
	require.NoError(t, err)
	assert.Equal(t, 25, v)
	assert.Equal(t, counter{"a": 1, "b": 1, "c": 1, "d": 1}, calls, "each dependent runs once")
	assert.Equal(t, domain.Cache{"a": 25, "b": 10, "c": 15, "d": 5}, cache)
}

func TestEngine_Solve_NilCache(t *testing.T) {
	calls := counter{}
	a, _, _, _ := diamond(calls)

	v, err := runtime.NewEngine().Solve(context.Background(), a, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, v)
	assert.Equal(t, 1, calls["d"])
}

func TestEngine_Solve_ContextOverride(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()

	t.Run("Leaf Substitution", func(t *testing.T) {
		calls := counter{}
		a, _, _, _ := diamond(calls)
		d2 := calls.fn("d2", func([]int) int { return 9 })
		cache := domain.NewCache()

		v, err := engine.Solve(ctx, a, domain.Context{"d": d2}, cache)
		require.NoError(t, err)
		assert.Equal(t, 45, v)
		assert.Zero(t, calls["d"], "substituted dependent must not run")
		assert.Equal(t, 1, calls["d2"])
		assert.Equal(t, 9, cache["d"], "value is cached under the requested key")
		assert.Equal(t, 9, cache["d2"], "and under the substitute key")
	})

	t.Run("Root Substitution", func(t *testing.T) {
		calls := counter{}
		a, b, _, _ := diamond(calls)

		v, err := engine.Solve(ctx, a, domain.Context{"a": b}, nil)
		require.NoError(t, err)
		assert.Equal(t, 10, v)
		assert.Zero(t, calls["a"])
	})

	t.Run("No Context", func(t *testing.T) {
		calls := counter{}
		a, _, _, _ := diamond(calls)

		v, err := engine.Solve(ctx, a, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 25, v)
	})

	t.Run("Substitute Already Cached", func(t *testing.T) {
		calls := counter{}
		a, _, _, _ := diamond(calls)
		d2 := calls.fn("d2", func([]int) int { return 9 })
		cache := domain.Cache{"d2": 1}

		v, err := engine.Solve(ctx, a, domain.Context{"d": d2}, cache)
		require.NoError(t, err)
		assert.Equal(t, 5, v)
		assert.Zero(t, calls["d2"])
		assert.Equal(t, 1, cache["d"])
	})
}

func TestEngine_Solve_CachedValueIsAuthoritative(t *testing.T) {
	calls := counter{}
	a, _, _, _ := diamond(calls)
	cache := domain.Cache{"d": 100}

	v, err := runtime.NewEngine().Solve(context.Background(), a, nil, cache)
	require.NoError(t, err)
	assert.Equal(t, 500, v)
	assert.Zero(t, calls["d"])
}

func TestEngine_Solve_CacheSharedAcrossCalls(t *testing.T) {
	calls := counter{}
	a, b, cc, _ := diamond(calls)
	engine := runtime.NewEngine()
	cache := domain.NewCache()
	ctx := context.Background()

	_, err := engine.Solve(ctx, b, nil, cache)
	require.NoError(t, err)
	_, err = engine.Solve(ctx, cc, nil, cache)
	require.NoError(t, err)
	v, err := engine.Solve(ctx, a, nil, cache)
	require.NoError(t, err)

	assert.Equal(t, 25, v)
	assert.Equal(t, counter{"a": 1, "b": 1, "c": 1, "d": 1}, calls)
}

func TestEngine_Solve_DependencyLoop(t *testing.T) {
	engine := runtime.NewEngine()
	ctx := context.Background()

	t.Run("Direct Cycle", func(t *testing.T) {
		calls := counter{}
		a, _, _, d := diamond(calls)
		d.Deps = []domain.Dependent{a}

		_, err := engine.Solve(ctx, a, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDependencyLoop)

		var loop *domain.DependencyLoopError
		require.ErrorAs(t, err, &loop)
		assert.Equal(t, "a", loop.Key)
		assert.Empty(t, calls, "nothing runs when a loop is found")
	})

	t.Run("Self Dependency", func(t *testing.T) {
		calls := counter{}
		x := calls.fn("x", func([]int) int { return 1 })
		x.Deps = []domain.Dependent{x}

		_, err := engine.Solve(ctx, x, nil, nil)
		assert.ErrorIs(t, err, domain.ErrDependencyLoop)
	})

	t.Run("Cycle Through Context", func(t *testing.T) {
		calls := counter{}
		y := calls.fn("y", func([]int) int { return 1 })
		x := calls.fn("x", func(v []int) int { return v[0] }, y)

		// The graph itself is acyclic; the substitution closes the loop.
		_, err := engine.Solve(ctx, x, nil, nil)
		require.NoError(t, err)

		_, err = engine.Solve(ctx, x, domain.Context{"y": x}, nil)
		assert.ErrorIs(t, err, domain.ErrDependencyLoop)
	})
}

func TestEngine_Solve_InvalidNode(t *testing.T) {
	engine := runtime.NewEngine()
	ctx := context.Background()
	text := domain.NewDatasource("revision.text")
	length := domain.NewFunc("revision.length", func(_ context.Context, args []any) (any, error) {
		return len(args[0].(string)), nil
	}, text)

	t.Run("Not Cached", func(t *testing.T) {
		_, err := engine.Solve(ctx, length, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidNode)
		assert.Contains(t, err.Error(), "revision.text")
		assert.Contains(t, err.Error(), "not callable")
	})

	t.Run("Seeded Cache", func(t *testing.T) {
		v, err := engine.Solve(ctx, length, nil, domain.Cache{"revision.text": "hello"})
		require.NoError(t, err)
		assert.Equal(t, 5, v)
	})

	t.Run("Context Substitute", func(t *testing.T) {
		cctx := domain.Context{"revision.text": domain.NewConstant("fixture.text", "hey")}
		v, err := engine.Solve(ctx, length, cctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})
}

func TestEngine_Solve_FuncWithoutFunction(t *testing.T) {
	engine := runtime.NewEngine()
	ctx := context.Background()
	empty := &domain.Func{Name: "empty"}
	top := domain.NewFunc("top", func(_ context.Context, args []any) (any, error) {
		return args[0], nil
	}, empty)

	_, err := engine.Solve(ctx, top, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidNode)
	assert.NotErrorIs(t, err, domain.ErrDependency)
	assert.Contains(t, err.Error(), "empty")

	v, err := engine.Solve(ctx, top, nil, domain.Cache{"empty": 7})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = empty.Invoke(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidNode)
}

func TestEngine_Solve_ErrorWrapping(t *testing.T) {
	boom := errors.New("boom")
	calls := counter{}
	d := calls.fn("d", func([]int) int { return 1 })
	failing := domain.NewFunc("failing", func(context.Context, []any) (any, error) {
		return nil, boom
	}, d)
	top := calls.fn("top", func(v []int) int { return v[0] }, failing)
	cache := domain.NewCache()

	_, err := runtime.NewEngine().Solve(context.Background(), top, nil, cache)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.ErrorIs(t, err, boom)

	var derr *domain.DependencyError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "failing", derr.Node)
	assert.Equal(t, "boom", derr.Message)
	assert.Contains(t, err.Error(), "failing")
	assert.Contains(t, err.Error(), "boom")

	assert.True(t, cache.Has("d"), "values computed before the failure stay cached")
	assert.False(t, cache.Has("failing"))
	assert.False(t, cache.Has("top"))
	assert.Zero(t, calls["top"])
}

func TestEngine_Solve_PanicIsWrapped(t *testing.T) {
	bad := domain.NewFunc("bad", func(context.Context, []any) (any, error) {
		panic("kaboom")
	})

	_, err := runtime.NewEngine().Solve(context.Background(), bad, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestEngine_Solve_Canceled(t *testing.T) {
	calls := counter{}
	a, _, _, _ := diamond(calls)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runtime.NewEngine().Solve(ctx, a, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestEngine_Solve_DeepChain(t *testing.T) {
	const depth = 50000
	var node domain.Dependent = domain.NewConstant("n0", 0)
	for i := 1; i <= depth; i++ {
		node = domain.NewFunc(fmt.Sprintf("n%d", i), func(_ context.Context, args []any) (any, error) {
			return args[0].(int) + 1, nil
		}, node)
	}

	v, err := runtime.NewEngine().Solve(context.Background(), node, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, depth, v)
}

func TestEngine_SolveAll(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()

	t.Run("Ordered And Shared Cache", func(t *testing.T) {
		calls := counter{}
		a, b, cc, d := diamond(calls)
		cache := domain.NewCache()

		var got []any
		for v, err := range engine.SolveAll(ctx, []domain.Dependent{d, b, cc, a}, nil, cache) {
			require.NoError(t, err)
			got = append(got, v)
		}
		assert.Equal(t, []any{5, 10, 15, 25}, got)
		assert.Equal(t, counter{"a": 1, "b": 1, "c": 1, "d": 1}, calls)
	})

	t.Run("Lazy", func(t *testing.T) {
		calls := counter{}
		a, b, _, _ := diamond(calls)

		seq := engine.SolveAll(ctx, []domain.Dependent{b, a}, nil, nil)
		assert.Empty(t, calls, "nothing runs before the sequence is pulled")

		for v, err := range seq {
			require.NoError(t, err)
			assert.Equal(t, 10, v)
			break
		}
		assert.Zero(t, calls["a"])
	})

	t.Run("Stops At First Error", func(t *testing.T) {
		calls := counter{}
		_, b, cc, _ := diamond(calls)
		missing := domain.NewDatasource("missing")

		var values []any
		var errs []error
		for v, err := range engine.SolveAll(ctx, []domain.Dependent{b, missing, cc}, nil, nil) {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			values = append(values, v)
		}
		assert.Equal(t, []any{10}, values)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], domain.ErrInvalidNode)
		assert.Zero(t, calls["c"])
	})

	t.Run("Single Pass", func(t *testing.T) {
		calls := counter{}
		a, _, _, _ := diamond(calls)
		seq := engine.SolveAll(ctx, []domain.Dependent{a}, nil, nil)

		for _, err := range seq {
			require.NoError(t, err)
		}
		var second []error
		for _, err := range seq {
			second = append(second, err)
		}
		require.Len(t, second, 1)
		assert.ErrorIs(t, second[0], domain.ErrSequenceConsumed)
	})

	t.Run("Fresh History Per Element", func(t *testing.T) {
		calls := counter{}
		a, _, _, _ := diamond(calls)

		// The same dependent twice is a cache hit, not a loop.
		var got []any
		for v, err := range engine.SolveAll(ctx, []domain.Dependent{a, a}, nil, nil) {
			require.NoError(t, err)
			got = append(got, v)
		}
		assert.Equal(t, []any{25, 25}, got)
		assert.Equal(t, 1, calls["a"])
	})
}
