package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for dependents.
func PrintBanner(w io.Writer, version string) {
	p := termenv.NewOutput(w).Profile
	// Subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct{ text, color string }{
		{"     _                           _            _       ", "#818cf8"},
		{"  __| | ___ _ __   ___ _ __   __| | ___ _ __ | |_ ___ ", "#a78bfa"},
		{" / _` |/ _ \\ '_ \\ / _ \\ '_ \\ / _` |/ _ \\ '_ \\| __/ __|", "#c084fc"},
		{"| (_| |  __/ |_) |  __/ | | | (_| |  __/ | | | |_\\__ \\", "#e879f9"},
		{" \\__,_|\\___| .__/ \\___|_| |_|\\__,_|\\___|_| |_|\\__|___/", "#f472b6"},
		{"           |_|", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  "+version).Faint())
	fmt.Fprintln(w)
}
