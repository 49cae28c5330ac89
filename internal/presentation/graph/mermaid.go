package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dependents/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	CachedNodes []string
	Targets     []string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a list of
// dependents, typically the output of Expand. Edges point from a dependency
// to the dependent consuming it.
// It applies semantic styling:
// - Datasource: [/Parallelogram/]
// - Leaf computation: ([Stadium])
// - Default: [Rectangle]
// It also applies overlay styles (Cached/Target) if provided.
func GenerateMermaid(nodes []domain.Dependent, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.Key())

		opener, closer := "[", "]"
		switch {
		case isDatasource(node):
			opener, closer = "[/", "/]"
		case domain.IsLeaf(node):
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, node.Key(), closer)

		// A dependency listed twice still gets a single edge.
		drawn := make(map[string]bool)
		for _, dep := range node.Dependencies() {
			safeFrom := sanitizeMermaidID(dep.Key())
			if drawn[safeFrom] {
				continue
			}
			drawn[safeFrom] = true
			fmt.Fprintf(&sb, "    %s --> %s\n", safeFrom, safeID)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef cached fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, overlay.CachedNodes, "cached")
		writeClass(&sb, overlay.Targets, "target")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, keys []string, class string) {
	done := make(map[string]bool)
	for _, key := range keys {
		safeID := sanitizeMermaidID(key)
		if safeID == "" || done[safeID] {
			continue
		}
		done[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func isDatasource(d domain.Dependent) bool {
	_, ok := domain.AsInvoker(d)
	return !ok
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
