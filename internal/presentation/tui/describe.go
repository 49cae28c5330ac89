package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/dependents/pkg/schema"
)

// DescribeMarkdown lists the nodes of a definition as a markdown table.
func DescribeMarkdown(title string, def *schema.Definition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d nodes.\n\n", len(def.Nodes))
	sb.WriteString("| Node | Op | Depends on | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, n := range def.Nodes {
		deps := "-"
		if len(n.Deps) > 0 {
			deps = "`" + strings.Join(n.Deps, "`, `") + "`"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n",
			n.Name, n.Operator(), deps, escapeCell(n.Description))
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
