package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/aretw0/dependents/pkg/ports"
)

// saveValues writes the solved values of names to the project source.
func saveValues(ctx context.Context, p *Project, names []string, values map[string]any) error {
	for _, name := range names {
		if err := p.Source.Set(ctx, name, values[name]); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
	}
	p.Logger.Debug("Values saved", "count", len(names))
	return nil
}

// RunValuesList prints the keys held by the source, one per line, sorted.
func RunValuesList(ctx context.Context, w io.Writer, source ports.ValueSource) error {
	keys, err := source.List(ctx)
	if err != nil {
		return err
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintln(w, key)
	}
	return nil
}

// RunValuesGet prints the value stored under each key.
func RunValuesGet(ctx context.Context, w io.Writer, source ports.ValueSource, keys []string) error {
	for _, key := range keys {
		v, err := source.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		fmt.Fprintf(w, "%s\t%v\n", key, v)
	}
	return nil
}

// RunValuesSet stores key=value pairs, decoded the same way as solve --value.
func RunValuesSet(ctx context.Context, source ports.ValueSource, pairs []string) error {
	values, err := parseValues(pairs)
	if err != nil {
		return err
	}
	for key, v := range values {
		if err := source.Set(ctx, key, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// RunValuesDelete removes the given keys.
func RunValuesDelete(ctx context.Context, source ports.ValueSource, keys []string) error {
	for _, key := range keys {
		if err := source.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}
