package dependents_test

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/aretw0/dependents"
	"github.com/aretw0/dependents/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graph struct {
	a, b, c, d *domain.Func
	calls      map[string]int
}

func newGraph() *graph {
	g := &graph{calls: map[string]int{}}
	counted := func(name string, op func([]int) int, deps ...domain.Dependent) *domain.Func {
		return intFunc(name, func(x []int) int {
			g.calls[name]++
			return op(x)
		}, deps...)
	}
	g.d = counted("d", func([]int) int { return 5 })
	g.b = counted("b", func(x []int) int { return x[0] * 2 }, g.d)
	g.c = counted("c", func(x []int) int { return x[0] * 3 }, g.d)
	g.a = counted("a", func(x []int) int { return x[0] + x[1] }, g.b, g.c)
	return g
}

func TestEngine_ReferenceScenario(t *testing.T) {
	ctx := context.Background()
	eng := dependents.New()

	g := newGraph()
	v, err := eng.Solve(ctx, g.a)
	require.NoError(t, err)
	assert.Equal(t, 25, v)
	assert.Equal(t, 1, g.calls["d"])

	seq, err := eng.Expand([]domain.Dependent{g.a})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "c"}, nodeKeys(slices.Collect(seq)))

	seq, err = eng.Dig([]domain.Dependent{g.a})
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, nodeKeys(slices.Collect(seq)))

	d2 := domain.NewConstant("d2", 9)
	v, err = eng.Solve(ctx, g.a, dependents.WithContext(domain.Context{"d": d2}))
	require.NoError(t, err)
	assert.Equal(t, 45, v)

	g.d.Deps = []domain.Dependent{g.a}
	_, err = eng.Solve(ctx, g.a)
	assert.ErrorIs(t, err, domain.ErrDependencyLoop)
}

func TestEngine_InvalidContext(t *testing.T) {
	g := newGraph()
	eng := dependents.New()
	bad := dependents.WithContext("not a context")

	_, err := eng.Solve(context.Background(), g.a, bad)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = eng.SolveAll(context.Background(), []domain.Dependent{g.a}, bad)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = eng.Expand([]domain.Dependent{g.a}, bad)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = eng.Dig([]domain.Dependent{g.a}, bad)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = eng.Draw(g.a, bad)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, g.calls)
}

func TestEngine_ContextFromCollection(t *testing.T) {
	text := domain.NewDatasource("text")
	chars := domain.NewFunc("chars", func(_ context.Context, args []any) (any, error) {
		return len(args[0].(string)), nil
	}, text)

	// Supplying a dependent as context marks it as externally provided.
	supplied := domain.NewConstant("text", "four")
	v, err := dependents.Solve(context.Background(), chars,
		dependents.WithContext([]domain.Dependent{supplied}))
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestEngine_ExpandIgnoresContext(t *testing.T) {
	g := newGraph()
	d2 := domain.NewConstant("d2", 9)

	seq, err := dependents.Expand([]domain.Dependent{g.a}, dependents.WithContext(domain.Context{"d": d2}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "c"}, nodeKeys(slices.Collect(seq)))

	seq, err = dependents.New().ExpandOne(g.b, dependents.WithContext(domain.Context{"d": d2}))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d"}, nodeKeys(slices.Collect(seq)))
}

func TestEngine_CacheAsSeen(t *testing.T) {
	g := newGraph()
	cache := domain.Cache{"b": 10}

	seq, err := dependents.Expand([]domain.Dependent{g.a}, dependents.WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, nodeKeys(slices.Collect(seq)))
	assert.Equal(t, domain.Cache{"b": 10}, cache, "traversals do not modify the cache")

	out, err := dependents.Draw(g.a, dependents.WithCache(cache))
	require.NoError(t, err)
	assert.Contains(t, out, "\t - b CACHED\n")
}

func TestEngine_SolveAll_SharedCache(t *testing.T) {
	g := newGraph()
	cache := domain.NewCache()

	seq, err := dependents.SolveAll(context.Background(), []domain.Dependent{g.b, g.c}, dependents.WithCache(cache))
	require.NoError(t, err)

	var got []any
	for v, err := range seq {
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{10, 15}, got)
	assert.Equal(t, 1, g.calls["d"])
	assert.Equal(t, 5, cache["d"])
}

func TestEngine_DrawDepth(t *testing.T) {
	leaf := domain.NewConstant("k", 1)
	out, err := dependents.Draw(leaf, dependents.WithDepth(1))
	require.NoError(t, err)
	assert.Equal(t, "\t - k\n", out)
}

func TestEngine_Logger(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug}))
	eng := dependents.New(dependents.WithLogger(logger))

	_, err := eng.Solve(context.Background(), newGraph().a)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "invoking dependent")
	assert.Contains(t, sb.String(), "node=d")
}

func TestEngine_Hooks(t *testing.T) {
	var runIDs []string
	eng := dependents.New(
		dependents.WithRunIDGenerator(func() string { return "fixed" }),
		dependents.WithLifecycleHooks(domain.LifecycleHooks{
			OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) { runIDs = append(runIDs, e.RunID) },
		}),
	)

	_, err := eng.Solve(context.Background(), newGraph().a)
	require.NoError(t, err)
	assert.Equal(t, []string{"fixed", "fixed", "fixed", "fixed"}, runIDs)
}

func TestExtractor(t *testing.T) {
	text := domain.NewDatasource("text")
	calls := 0
	words := domain.NewFunc("words", func(_ context.Context, args []any) (any, error) {
		calls++
		return strings.Fields(args[0].(string)), nil
	}, text)
	count := domain.NewFunc("count", func(_ context.Context, args []any) (any, error) {
		return len(args[0].([]string)), nil
	}, words)
	first := domain.NewFunc("first", func(_ context.Context, args []any) (any, error) {
		ws := args[0].([]string)
		if len(ws) == 0 {
			return nil, errors.New("no words")
		}
		return ws[0], nil
	}, words)

	x := dependents.NewExtractor(nil, []domain.Dependent{count, first})
	assert.Len(t, x.Targets(), 2)

	t.Run("Single Item", func(t *testing.T) {
		calls = 0
		seed := domain.Cache{"text": "hello big world"}
		values, err := x.Extract(context.Background(), seed)
		require.NoError(t, err)
		assert.Equal(t, []any{3, "hello"}, values)
		assert.Equal(t, 1, calls, "shared upstream runs once per item")
		assert.Equal(t, domain.Cache{"text": "hello big world"}, seed, "seed is not modified")
	})

	t.Run("Many Items", func(t *testing.T) {
		items := slices.Values([]domain.Cache{
			{"text": "a b"},
			{"text": ""},
			{"text": "z"},
		})

		var results [][]any
		var errs []error
		for values, err := range x.ExtractAll(context.Background(), items) {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			results = append(results, values)
		}
		assert.Equal(t, [][]any{{2, "a"}, {1, "z"}}, results)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], domain.ErrDependency)
		assert.Contains(t, errs[0].Error(), "no words")
	})

	t.Run("Missing Datasource", func(t *testing.T) {
		_, err := x.Extract(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidNode)
	})
}

func nodeKeys(ds []domain.Dependent) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Key()
	}
	return out
}
