package main

import (
	"os"

	"github.com/aretw0/dependents/internal/cli"
	"github.com/aretw0/dependents/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand [node]...",
	Short: "List every node reachable from the given nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		return cli.RunExpand(cmd.OutOrStdout(), p, args, traverseOptions(cmd))
	},
}

var digCmd = &cobra.Command{
	Use:   "dig [node]...",
	Short: "List the leaves the given nodes ultimately depend on",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		return cli.RunDig(cmd.OutOrStdout(), p, args, traverseOptions(cmd))
	},
}

var drawCmd = &cobra.Command{
	Use:   "draw <node>...",
	Short: "Print the dependency tree of the given nodes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		opts := traverseOptions(cmd)
		opts.Depth, _ = cmd.Flags().GetInt("depth")
		color, _ := cmd.Flags().GetBool("color")
		opts.Profile = tui.ProfileFor(os.Stdout, color)
		return cli.RunDraw(cmd.OutOrStdout(), p, args, opts)
	},
}

func traverseOptions(cmd *cobra.Command) cli.TraverseOptions {
	context, _ := cmd.Flags().GetStringArray("context")
	seen, _ := cmd.Flags().GetStringSlice("seen")
	return cli.TraverseOptions{Context: context, Seen: seen}
}

func init() {
	for _, c := range []*cobra.Command{expandCmd, digCmd, drawCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringArray("context", nil, "Substitution as key=node (repeatable)")
		c.Flags().StringSlice("seen", nil, "Keys to treat as already visited")
	}
	drawCmd.Flags().Int("depth", 0, "Indentation level of the root line")
	drawCmd.Flags().Bool("color", true, "Colorize output when stdout is a terminal")
}
