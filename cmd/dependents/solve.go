package main

import (
	"os"

	"github.com/aretw0/dependents/internal/cli"
	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve <node>...",
	Short: "Compute the value of one or more nodes",
	Long: `Solves the named nodes against one shared cache and prints a value per node.
Datasource values are given with --value; --context swaps one node for another.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		values, _ := cmd.Flags().GetStringArray("value")
		context, _ := cmd.Flags().GetStringArray("context")
		jsonMode, _ := cmd.Flags().GetBool("json")
		save, _ := cmd.Flags().GetBool("save")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunSolve(ctx, cmd.OutOrStdout(), p, args, cli.SolveOptions{
			Values:  values,
			Context: context,
			JSON:    jsonMode,
			Save:    save,
		})
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <node>...",
	Short: "Solve nodes for every JSON line read from stdin",
	Long: `Reads one JSON object of known values per line on stdin and writes one JSON
line with the solved nodes, or the error, per input line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		context, _ := cmd.Flags().GetStringArray("context")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunExtract(ctx, os.Stdin, cmd.OutOrStdout(), p, args, cli.ExtractOptions{Context: context})
	},
}

func init() {
	rootCmd.AddCommand(solveCmd, extractCmd)

	solveCmd.Flags().StringArray("value", nil, "Known value as key=value (repeatable)")
	solveCmd.Flags().StringArray("context", nil, "Substitution as key=node (repeatable)")
	solveCmd.Flags().Bool("json", false, "Print results as a JSON object")
	solveCmd.Flags().Bool("save", false, "Store the solved values in the value source")

	extractCmd.Flags().StringArray("context", nil, "Substitution as key=node (repeatable)")
}
