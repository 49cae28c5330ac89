package tui

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	cachedSuffix = " CACHED"
	loopSuffix   = " LOOP"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ColorizeDraw styles the output of a draw: bullets are dimmed, cached
// dependents are faint and loops are highlighted. Indentation is kept.
// With the Ascii profile the output is returned unchanged.
func ColorizeDraw(out string, p termenv.Profile) string {
	if p == termenv.Ascii {
		return out
	}

	lines := strings.SplitAfter(out, "\n")
	var sb strings.Builder
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		if body == "" {
			sb.WriteString(line)
			continue
		}

		indent := body[:len(body)-len(strings.TrimLeft(body, "\t"))]
		label := strings.TrimPrefix(body[len(indent):], " - ")

		sb.WriteString(indent)
		sb.WriteString(p.String(" - ").Faint().String())
		switch {
		case strings.HasSuffix(label, cachedSuffix):
			name := strings.TrimSuffix(label, cachedSuffix)
			sb.WriteString(p.String(name).Faint().String())
			sb.WriteString(p.String(cachedSuffix).Foreground(p.Color("#38bdf8")).String())
		case strings.HasSuffix(label, loopSuffix):
			name := strings.TrimSuffix(label, loopSuffix)
			sb.WriteString(p.String(name).Bold().String())
			sb.WriteString(p.String(loopSuffix).Foreground(p.Color("#f43f5e")).Bold().String())
		default:
			sb.WriteString(p.String(label).Bold().String())
		}
		if strings.HasSuffix(line, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ProfileFor returns the color profile of f, or Ascii when color is disabled.
func ProfileFor(f *os.File, color bool) termenv.Profile {
	if !color {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).Profile
}
