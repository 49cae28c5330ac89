package main

import (
	"github.com/aretw0/dependents/internal/cli"
	"github.com/spf13/cobra"
)

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "Inspect and edit the values read by lookup nodes",
	Long: `Manages the value source (--redis, or an in-process store) that lookup nodes
read from. Values go through --redact and DEPENDENTS_ENCRYPTION_KEY like solve --save.`,
}

var valuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := cli.OpenSource(projectOptions(cmd))
		if err != nil {
			return err
		}
		return cli.RunValuesList(cmd.Context(), cmd.OutOrStdout(), source)
	},
}

var valuesGetCmd = &cobra.Command{
	Use:   "get <key>...",
	Short: "Print stored values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := cli.OpenSource(projectOptions(cmd))
		if err != nil {
			return err
		}
		return cli.RunValuesGet(cmd.Context(), cmd.OutOrStdout(), source, args)
	},
}

var valuesSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Store values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := cli.OpenSource(projectOptions(cmd))
		if err != nil {
			return err
		}
		return cli.RunValuesSet(cmd.Context(), source, args)
	},
}

var valuesDeleteCmd = &cobra.Command{
	Use:     "delete <key>...",
	Aliases: []string{"rm"},
	Short:   "Remove stored values",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := cli.OpenSource(projectOptions(cmd))
		if err != nil {
			return err
		}
		return cli.RunValuesDelete(cmd.Context(), source, args)
	},
}

func init() {
	valuesCmd.AddCommand(valuesListCmd, valuesGetCmd, valuesSetCmd, valuesDeleteCmd)
	rootCmd.AddCommand(valuesCmd)
}
