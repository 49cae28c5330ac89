package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/dependents"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dependents",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dependents version %s\n", strings.TrimSpace(dependents.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
