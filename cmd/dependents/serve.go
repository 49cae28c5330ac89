package main

import (
	"strings"

	"github.com/aretw0/dependents"
	"github.com/aretw0/dependents/internal/cli"
	"github.com/aretw0/dependents/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves the graph file as a JSON API over HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")

		tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(dependents.Version))

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunServe(ctx, cmd.OutOrStdout(), p, cli.ServeOptions{Addr: addr})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
