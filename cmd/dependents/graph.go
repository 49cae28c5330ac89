package main

import (
	"os"

	"github.com/aretw0/dependents/internal/cli"
	"github.com/aretw0/dependents/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [node]...",
	Short: "Export the dependency graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the given nodes and everything they depend on, or of the whole file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		cached, _ := cmd.Flags().GetStringSlice("cached")
		return cli.RunGraph(cmd.OutOrStdout(), p, args, cached)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Summarize the nodes of the graph file",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		var render func(string) (string, error)
		if tui.IsTerminal(os.Stdout) {
			render = tui.NewRenderer()
		}
		return cli.RunDescribe(cmd.OutOrStdout(), p, render)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd, describeCmd)
	graphCmd.Flags().StringSlice("cached", nil, "Nodes to highlight as cached")
}
