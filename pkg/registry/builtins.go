package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/aretw0/dependents/pkg/domain"
	"github.com/spf13/cast"
)

// ErrArity is returned by a built-in operator invoked with the wrong number of arguments.
var ErrArity = errors.New("wrong number of arguments")

// ErrDivisionByZero is returned by the div operator.
var ErrDivisionByZero = errors.New("division by zero")

// RegisterBuiltins registers the built-in operators on r.
func RegisterBuiltins(r *Registry) {
	r.Register("datasource", func(Call) (domain.InvokeFunc, error) { return nil, nil })
	r.Register("const", constOp)
	r.Register("lookup", lookupOp)

	r.Register("sum", reduce(0, addition))
	r.Register("product", reduce(1, multiplication))
	r.Register("max", extremum(arith{ints: exact(func(a, b int64) int64 { return max(a, b) }), floats: math.Max}))
	r.Register("min", extremum(arith{ints: exact(func(a, b int64) int64 { return min(a, b) }), floats: math.Min}))
	r.Register("mul", scaleOp("factor", multiplication))
	r.Register("add", scaleOp("amount", addition))
	r.Register("div", plain(div))

	r.Register("len", plain(length))
	r.Register("split", splitOp)

	r.Register("not", plain(not))
	r.Register("and", plain(func(args []any) (any, error) { return logical(args, true) }))
	r.Register("or", plain(func(args []any) (any, error) { return logical(args, false) }))
	r.Register("eq", eqOp)
}

func plain(fn func(args []any) (any, error)) Factory {
	return func(call Call) (domain.InvokeFunc, error) {
		if err := call.Decode(&struct{}{}); err != nil {
			return nil, err
		}
		return func(_ context.Context, args []any) (any, error) {
			return fn(args)
		}, nil
	}
}

func arity(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d, got %d", ErrArity, n, len(args))
	}
	return nil
}

func constOp(call Call) (domain.InvokeFunc, error) {
	var p struct {
		Value any `mapstructure:"value"`
	}
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	return func(context.Context, []any) (any, error) {
		return p.Value, nil
	}, nil
}

func lookupOp(call Call) (domain.InvokeFunc, error) {
	var p struct {
		Key string `mapstructure:"key"`
	}
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	if p.Key == "" {
		p.Key = call.Node
	}
	if call.Source == nil {
		return nil, fmt.Errorf("lookup node %s requires a value source", call.Node)
	}
	source := call.Source
	return func(ctx context.Context, _ []any) (any, error) {
		v, err := source.Get(ctx, p.Key)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", p.Key, err)
		}
		return v, nil
	}, nil
}

// arith is a binary numeric operator. ints reports false when the exact
// integer result does not fit in an int64; the float form is used then.
type arith struct {
	ints   func(a, b int64) (int64, bool)
	floats func(a, b float64) float64
}

func exact(fn func(a, b int64) int64) func(a, b int64) (int64, bool) {
	return func(a, b int64) (int64, bool) { return fn(a, b), true }
}

var addition = arith{
	ints: func(a, b int64) (int64, bool) {
		c := a + b
		return c, (c > a) == (b > 0)
	},
	floats: func(a, b float64) float64 { return a + b },
}

var multiplication = arith{
	ints: func(a, b int64) (int64, bool) {
		if a == 0 || b == 0 {
			return 0, true
		}
		c := a * b
		return c, c/b == a && !(a == -1 && b == math.MinInt64) && !(b == -1 && a == math.MinInt64)
	},
	floats: func(a, b float64) float64 { return a * b },
}

// fold applies op left to right from init. Integer arguments are combined
// exactly in int64; the float form takes over at the first non-integer
// argument or overflow.
func fold(init any, args []any, op arith) (any, error) {
	acc := init
	for i, a := range args {
		next, err := apply(acc, a, op)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		acc = next
	}
	return acc, nil
}

func apply(a, b any, op arith) (any, error) {
	if isInt(a) && isInt(b) {
		x, errX := cast.ToInt64E(a)
		y, errY := cast.ToInt64E(b)
		if errX == nil && errY == nil && fitsInt64(a) && fitsInt64(b) {
			if c, ok := op.ints(x, y); ok {
				return integer(c), nil
			}
		}
	}
	x, err := cast.ToFloat64E(a)
	if err != nil {
		return nil, err
	}
	y, err := cast.ToFloat64E(b)
	if err != nil {
		return nil, err
	}
	return op.floats(x, y), nil
}

func isInt(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func fitsInt64(v any) bool {
	switch n := v.(type) {
	case uint:
		return uint64(n) <= math.MaxInt64
	case uint64:
		return n <= math.MaxInt64
	}
	return true
}

// integer returns n as an int when it fits.
func integer(n int64) any {
	if int64(int(n)) == n {
		return int(n)
	}
	return n
}

func reduce(init int, op arith) Factory {
	return plain(func(args []any) (any, error) {
		return fold(init, args, op)
	})
}

func extremum(op arith) Factory {
	return plain(func(args []any) (any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: want at least 1", ErrArity)
		}
		f, err := cast.ToFloat64E(args[0])
		if err != nil {
			return nil, fmt.Errorf("argument 0: %w", err)
		}
		var first any = f
		if isInt(args[0]) && fitsInt64(args[0]) {
			first = integer(cast.ToInt64(args[0]))
		}
		return fold(first, args[1:], op)
	})
}

func scaleOp(param string, op arith) Factory {
	return func(call Call) (domain.InvokeFunc, error) {
		var p map[string]any
		if err := call.Decode(&p); err != nil {
			return nil, err
		}
		for name := range p {
			if name != param {
				return nil, fmt.Errorf("invalid arguments for %s: unknown argument %q", call.Node, name)
			}
		}
		raw, ok := p[param]
		if !ok {
			return nil, fmt.Errorf("invalid arguments for %s: missing %q", call.Node, param)
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid arguments for %s: %q: %w", call.Node, param, err)
		}
		var k any = f
		if isInt(raw) {
			k = raw
		} else if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			k = int64(f)
		}
		return func(_ context.Context, args []any) (any, error) {
			if err := arity(args, 1); err != nil {
				return nil, err
			}
			v, err := apply(args[0], k, op)
			if err != nil {
				return nil, fmt.Errorf("argument 0: %w", err)
			}
			return v, nil
		}, nil
	}
}

func div(args []any) (any, error) {
	if err := arity(args, 2); err != nil {
		return nil, err
	}
	x, err := cast.ToFloat64E(args[0])
	if err != nil {
		return nil, fmt.Errorf("argument 0: %w", err)
	}
	y, err := cast.ToFloat64E(args[1])
	if err != nil {
		return nil, fmt.Errorf("argument 1: %w", err)
	}
	if y == 0 {
		return nil, ErrDivisionByZero
	}
	return x / y, nil
}

func length(args []any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		return len([]rune(s)), nil
	}
	rv := reflect.ValueOf(args[0])
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	default:
		return nil, fmt.Errorf("len: unsupported type %T", args[0])
	}
}

func splitOp(call Call) (domain.InvokeFunc, error) {
	var p struct {
		Sep string `mapstructure:"sep"`
	}
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		s, err := cast.ToStringE(args[0])
		if err != nil {
			return nil, err
		}
		if p.Sep == "" {
			return strings.Fields(s), nil
		}
		return strings.Split(s, p.Sep), nil
	}, nil
}

func not(args []any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	b, err := cast.ToBoolE(args[0])
	if err != nil {
		return nil, err
	}
	return !b, nil
}

// logical folds args with AND when all is true and with OR otherwise.
func logical(args []any, all bool) (any, error) {
	for i, a := range args {
		b, err := cast.ToBoolE(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		if b != all {
			return b, nil
		}
	}
	return all, nil
}

func eqOp(call Call) (domain.InvokeFunc, error) {
	var p struct {
		Value any `mapstructure:"value"`
	}
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	return func(_ context.Context, args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		return equal(args[0], p.Value), nil
	}, nil
}

// equal compares numbers by value so that 5 and 5.0 match.
func equal(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return cast.ToFloat64(a) == cast.ToFloat64(b)
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return isInt(v)
}
