package runtime

import (
	"iter"

	"github.com/aretw0/dependents/pkg/domain"
)

// NormalizeContext turns a caller-supplied override set into a Context.
//
//   - nil yields an empty Context.
//   - a Context or map[string]Dependent is returned unchanged.
//   - a slice or sequence of dependents maps each one to itself, marking
//     them as externally supplied.
//
// Any other value fails with a *domain.ConfigurationError.
func NormalizeContext(v any) (domain.Context, error) {
	switch c := v.(type) {
	case nil:
		return domain.Context{}, nil
	case domain.Context:
		if c == nil {
			return domain.Context{}, nil
		}
		return c, nil
	case map[string]domain.Dependent:
		if c == nil {
			return domain.Context{}, nil
		}
		return domain.Context(c), nil
	case []domain.Dependent:
		ctx := make(domain.Context, len(c))
		for _, d := range c {
			ctx[d.Key()] = d
		}
		return ctx, nil
	case iter.Seq[domain.Dependent]:
		ctx := domain.Context{}
		for d := range c {
			ctx[d.Key()] = d
		}
		return ctx, nil
	default:
		return nil, &domain.ConfigurationError{Value: v}
	}
}
