package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/aretw0/dependents"
	"github.com/aretw0/dependents/internal/sanitize"
	"github.com/aretw0/dependents/pkg/domain"
)

// SolveOptions configures the solve command.
type SolveOptions struct {
	Values  []string // key=value pairs seeding the cache
	Context []string // key=substitute pairs
	JSON    bool
	// Save stores every solved target in the project value source.
	Save bool
}

// RunSolve solves the named targets and prints one value per target.
func RunSolve(ctx context.Context, w io.Writer, p *Project, names []string, opts SolveOptions) error {
	targets, err := p.Graph.Lookup(names...)
	if err != nil {
		return err
	}
	cctx, err := p.context(opts.Context)
	if err != nil {
		return err
	}
	values, err := parseValues(opts.Values)
	if err != nil {
		return err
	}

	cache := domain.NewCache()
	for k, v := range values {
		cache[k] = v
	}

	seq, err := p.Engine.SolveAll(ctx, targets, dependents.WithContext(cctx), dependents.WithCache(cache))
	if err != nil {
		return err
	}

	results := make(map[string]any, len(names))
	i := 0
	for v, err := range seq {
		if err != nil {
			return handleExecutionError(err)
		}
		if !opts.JSON {
			fmt.Fprintf(w, "%s\t%v\n", names[i], v)
		}
		results[names[i]] = v
		i++
	}

	if opts.Save {
		if err := saveValues(ctx, p, names, results); err != nil {
			return err
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return nil
}

// ExtractOptions configures the extract command.
type ExtractOptions struct {
	Context []string
}

type extractLine struct {
	Values map[string]any `json:"values,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// RunExtract reads one JSON object of known values per input line, solves
// the targets for each and writes one JSON line per item. A failing item is
// reported on its line and does not stop the run.
func RunExtract(ctx context.Context, r io.Reader, w io.Writer, p *Project, names []string, opts ExtractOptions) error {
	targets, err := p.Graph.Lookup(names...)
	if err != nil {
		return err
	}
	cctx, err := p.context(opts.Context)
	if err != nil {
		return err
	}

	var decodeErr error
	items := readItems(r, &decodeErr)

	x := dependents.NewExtractor(p.Engine, targets, dependents.WithContext(cctx))
	enc := json.NewEncoder(w)
	for values, err := range x.ExtractAll(ctx, items) {
		var line extractLine
		if err != nil {
			if isInterrupted(err) {
				return nil
			}
			line.Error = err.Error()
		} else {
			line.Values = make(map[string]any, len(names))
			for i, name := range names {
				line.Values[name] = values[i]
			}
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return decodeErr
}

// readItems yields one cache per non-empty line of r. It stops at the first
// malformed line and stores the failure in errp.
func readItems(r io.Reader, errp *error) iter.Seq[domain.Cache] {
	return func(yield func(domain.Cache) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			if len(scanner.Bytes()) == 0 {
				continue
			}
			var seed domain.Cache
			if err := json.Unmarshal(scanner.Bytes(), &seed); err != nil {
				*errp = fmt.Errorf("line %d: %w", line, err)
				return
			}
			if err := sanitize.Values(seed); err != nil {
				*errp = fmt.Errorf("line %d: %w", line, err)
				return
			}
			if !yield(seed) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			*errp = err
		}
	}
}
