package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/aretw0/dependents"
	"github.com/aretw0/dependents/internal/presentation/graph"
	"github.com/aretw0/dependents/internal/presentation/tui"
	"github.com/aretw0/dependents/pkg/domain"
	"github.com/muesli/termenv"
)

// TraverseOptions configures expand, dig, draw and graph.
type TraverseOptions struct {
	Context []string // key=substitute pairs
	Seen    []string // keys treated as already visited
	Depth   int      // draw only
	Profile termenv.Profile
}

func (p *Project) callOptions(opts TraverseOptions) ([]dependents.CallOption, error) {
	cctx, err := p.context(opts.Context)
	if err != nil {
		return nil, err
	}
	return []dependents.CallOption{
		dependents.WithContext(cctx),
		dependents.WithSeen(domain.NewSeen(opts.Seen...)),
		dependents.WithDepth(opts.Depth),
	}, nil
}

// RunExpand prints every dependent reachable from the targets, one key per line.
func RunExpand(w io.Writer, p *Project, names []string, opts TraverseOptions) error {
	targets, err := p.targets(names)
	if err != nil {
		return err
	}
	callOpts, err := p.callOptions(opts)
	if err != nil {
		return err
	}
	seq, err := p.Engine.Expand(targets, callOpts...)
	if err != nil {
		return err
	}
	for d := range seq {
		fmt.Fprintln(w, d.Key())
	}
	return nil
}

// RunDig prints the leaves reachable from the targets, one key per line.
func RunDig(w io.Writer, p *Project, names []string, opts TraverseOptions) error {
	targets, err := p.targets(names)
	if err != nil {
		return err
	}
	callOpts, err := p.callOptions(opts)
	if err != nil {
		return err
	}
	seq, err := p.Engine.Dig(targets, callOpts...)
	if err != nil {
		return err
	}
	for d := range seq {
		fmt.Fprintln(w, d.Key())
	}
	return nil
}

// RunDraw prints the dependency tree of each target.
func RunDraw(w io.Writer, p *Project, names []string, opts TraverseOptions) error {
	targets, err := p.Graph.Lookup(names...)
	if err != nil {
		return err
	}
	callOpts, err := p.callOptions(opts)
	if err != nil {
		return err
	}
	for _, target := range targets {
		out, err := p.Engine.Draw(target, callOpts...)
		if err != nil {
			return err
		}
		fmt.Fprint(w, tui.ColorizeDraw(out, opts.Profile))
	}
	return nil
}

// RunGraph prints a Mermaid flowchart of the dependents reachable from the
// targets, or of the whole graph when no target is given.
func RunGraph(w io.Writer, p *Project, names []string, cached []string) error {
	targets, err := p.targets(names)
	if err != nil {
		return err
	}
	seq, err := p.Engine.Expand(targets)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if len(names) > 0 || len(cached) > 0 {
		overlay = &graph.GraphOverlay{CachedNodes: cached, Targets: names}
	}
	fmt.Fprint(w, graph.GenerateMermaid(slices.Collect(seq), overlay))
	return nil
}

// RunDescribe prints a markdown table of the graph nodes. render, when not
// nil, turns the markdown into terminal output.
func RunDescribe(w io.Writer, p *Project, render func(string) (string, error)) error {
	md := tui.DescribeMarkdown(p.Path, p.Def)
	if render != nil {
		out, err := render(md)
		if err != nil {
			return err
		}
		md = out
	}
	_, err := fmt.Fprint(w, md)
	return err
}
