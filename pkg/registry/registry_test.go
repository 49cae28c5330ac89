package registry_test

import (
	"context"
	"math"
	"testing"

	"github.com/aretw0/dependents/pkg/adapters/memory"
	"github.com/aretw0/dependents/pkg/domain"
	"github.com/aretw0/dependents/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("answer", func(call registry.Call) (domain.InvokeFunc, error) {
		return func(context.Context, []any) (any, error) { return call.Node + "=42", nil }, nil
	})

	assert.True(t, r.Has("answer"))
	assert.Equal(t, []string{"answer"}, r.Names())

	fn, err := r.Build("answer", "x", nil)
	require.NoError(t, err)
	v, err := fn(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "x=42", v)

	_, err = r.Build("missing", "x", nil)
	assert.ErrorIs(t, err, registry.ErrUnknownOperator)
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args map[string]any
		in   []any
		want any
	}{
		{"const", "const", map[string]any{"value": 5}, nil, 5},
		{"sum ints", "sum", nil, []any{1, 2, 3}, 6},
		{"sum mixed", "sum", nil, []any{1, 2.5}, 3.5},
		{"sum empty", "sum", nil, nil, 0},
		{"product", "product", nil, []any{2, 3, 4}, 24},
		{"max", "max", nil, []any{3, 9, 4}, 9},
		{"min", "min", nil, []any{3.5, 9, 4}, 3.5},
		{"mul", "mul", map[string]any{"factor": 2}, []any{5}, 10},
		{"mul fractional", "mul", map[string]any{"factor": 0.5}, []any{5}, 2.5},
		{"add", "add", map[string]any{"amount": -1}, []any{5}, 4},
		{"div", "div", nil, []any{9, 2}, 4.5},
		{"len string", "len", nil, []any{"héllo"}, 5},
		{"len slice", "len", nil, []any{[]string{"a", "b"}}, 2},
		{"split fields", "split", nil, []any{" a  b c "}, []string{"a", "b", "c"}},
		{"split sep", "split", map[string]any{"sep": ","}, []any{"a,b"}, []string{"a", "b"}},
		{"not", "not", nil, []any{false}, true},
		{"and", "and", nil, []any{true, true, false}, false},
		{"and empty", "and", nil, nil, true},
		{"or", "or", nil, []any{false, true}, true},
		{"or empty", "or", nil, nil, false},
		{"eq number", "eq", map[string]any{"value": 5}, []any{5.0}, true},
		{"eq string", "eq", map[string]any{"value": "x"}, []any{"y"}, false},
	}

	r := registry.NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := r.Build(tt.op, "node", tt.args)
			require.NoError(t, err)
			v, err := fn(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestBuiltins_LargeIntegers(t *testing.T) {
	r := registry.NewDefault()
	ctx := context.Background()
	const big = int64(1<<53 + 1)

	tests := []struct {
		name string
		op   string
		args map[string]any
		in   []any
		want any
	}{
		{"sum", "sum", nil, []any{big, int64(0)}, int(big)},
		{"sum uint", "sum", nil, []any{uint64(big), 1}, int(big + 1)},
		{"product", "product", nil, []any{big, 1}, int(big)},
		{"max", "max", nil, []any{big - 2, big}, int(big)},
		{"add", "add", map[string]any{"amount": 2}, []any{big}, int(big + 2)},
		{"mul", "mul", map[string]any{"factor": 1}, []any{big}, int(big)},
		{"overflow falls back to float", "sum", nil, []any{int64(math.MaxInt64), 1}, float64(1 << 63)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := r.Build(tt.op, "node", tt.args)
			require.NoError(t, err)
			v, err := fn(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestBuiltins_Errors(t *testing.T) {
	r := registry.NewDefault()
	ctx := context.Background()

	t.Run("unknown argument", func(t *testing.T) {
		_, err := r.Build("sum", "node", map[string]any{"bogus": 1})
		assert.Error(t, err)
		_, err = r.Build("mul", "node", map[string]any{"factor": 2, "bogus": 1})
		assert.Error(t, err)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := r.Build("mul", "node", nil)
		assert.ErrorContains(t, err, "factor")
	})

	t.Run("division by zero", func(t *testing.T) {
		fn, err := r.Build("div", "node", nil)
		require.NoError(t, err)
		_, err = fn(ctx, []any{1, 0})
		assert.ErrorIs(t, err, registry.ErrDivisionByZero)
	})

	t.Run("arity", func(t *testing.T) {
		fn, err := r.Build("not", "node", nil)
		require.NoError(t, err)
		_, err = fn(ctx, []any{true, false})
		assert.ErrorIs(t, err, registry.ErrArity)

		fn, err = r.Build("max", "node", nil)
		require.NoError(t, err)
		_, err = fn(ctx, nil)
		assert.ErrorIs(t, err, registry.ErrArity)
	})

	t.Run("not a number", func(t *testing.T) {
		fn, err := r.Build("sum", "node", nil)
		require.NoError(t, err)
		_, err = fn(ctx, []any{1, "many"})
		assert.Error(t, err)
	})

	t.Run("lookup without source", func(t *testing.T) {
		_, err := r.Build("lookup", "node", nil)
		assert.ErrorContains(t, err, "value source")
	})
}

func TestBuiltins_Datasource(t *testing.T) {
	fn, err := registry.NewDefault().Build("datasource", "text", nil)
	require.NoError(t, err)
	assert.Nil(t, fn)
}

func TestBuiltins_Lookup(t *testing.T) {
	r := registry.NewDefault()
	r.SetSource(memory.NewSource(map[string]any{
		"revision.text": "abc",
		"other":         7,
	}))
	ctx := context.Background()

	byName, err := r.Build("lookup", "revision.text", nil)
	require.NoError(t, err)
	v, err := byName(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	byKey, err := r.Build("lookup", "alias", map[string]any{"key": "other"})
	require.NoError(t, err)
	v, err = byKey(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	missing, err := r.Build("lookup", "missing", nil)
	require.NoError(t, err)
	_, err = missing(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrValueNotFound)
}
