package main

import (
	"github.com/aretw0/dependents/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the graph",
	Long: `Exposes solve, expand, dig and draw as MCP tools and the graph definition
as a resource. Uses stdio unless --sse is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		sse, _ := cmd.Flags().GetString("sse")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunMCP(ctx, p, cli.MCPOptions{SSEAddr: sse})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("sse", "", "Serve over SSE on this address instead of stdio")
}
