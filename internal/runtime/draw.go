package runtime

import (
	"slices"
	"strings"

	"github.com/aretw0/dependents/pkg/domain"
)

// Line is one row of a drawn dependency tree.
type Line struct {
	Depth  int
	Label  string
	Cached bool // key was in the seen-set; children are not drawn
	Loop   bool // key already appears above on the same branch
}

// String formats the line the way Draw prints it.
func (l Line) String() string {
	s := strings.Repeat("\t", l.Depth) + " - " + l.Label
	switch {
	case l.Cached:
		s += " CACHED"
	case l.Loop:
		s += " LOOP"
	}
	return s
}

// DrawLines walks the dependency tree of node starting at depth.
// Dependents whose key is in seen are marked cached and not descended into.
// The substituted dependent (through cctx) is the one displayed and walked.
// seen is only read.
//
// A dependent that reappears on its own branch is marked as a loop instead
// of being expanded forever.
func (e *Engine) DrawLines(node domain.Dependent, cctx domain.Context, seen domain.Seen, depth int) []Line {
	type item struct {
		d     domain.Dependent
		depth int
	}

	var (
		lines []Line
		path  []string // keys of the current branch, indexed by depth-offset
		stack = []item{{node, depth}}
	)
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen.Has(it.d.Key()) {
			lines = append(lines, Line{Depth: it.depth, Label: domain.Describe(it.d), Cached: true})
			continue
		}
		sub := cctx.Lookup(it.d)

		level := it.depth - depth
		path = path[:level]
		if slices.Contains(path, sub.Key()) {
			lines = append(lines, Line{Depth: it.depth, Label: domain.Describe(sub), Loop: true})
			continue
		}
		path = append(path, sub.Key())

		lines = append(lines, Line{Depth: it.depth, Label: domain.Describe(sub)})
		deps := sub.Dependencies()
		for i := len(deps) - 1; i >= 0; i-- {
			stack = append(stack, item{deps[i], it.depth + 1})
		}
	}
	return lines
}

// Draw renders the dependency tree of node as text, one line per dependent,
// indented with a tab per level. The result ends with a newline.
func (e *Engine) Draw(node domain.Dependent, cctx domain.Context, seen domain.Seen, depth int) string {
	lines := e.DrawLines(node, cctx, seen, depth)
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
