package main

import (
	"fmt"
	"os"

	"github.com/aretw0/dependents/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dependents",
	Short: "Dependents evaluates lazy dependency graphs",
	Long: `Dependents loads a graph of named nodes from a YAML, JSON or TOML file (or a
directory of node documents) and
solves, expands, digs or draws it. Every value is computed once per run.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "graph.yaml", "Graph definition file (.yaml, .json or .toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address backing lookup nodes (host:port)")
	rootCmd.PersistentFlags().Duration("redis-ttl", 0, "Expiration of values stored in Redis (0 keeps them)")
	rootCmd.PersistentFlags().StringSlice("redact", nil, "Key patterns whose values are masked before storage (solve --save, values set)")
	rootCmd.PersistentFlags().String("tools", "tools.yaml", "Allow-list of commands for exec nodes")
}

// loadProject reads the persistent flags and loads the graph file.
func loadProject(cmd *cobra.Command) (*cli.Project, error) {
	return cli.LoadProject(projectOptions(cmd))
}

// projectOptions reads the persistent flags.
func projectOptions(cmd *cobra.Command) cli.Options {
	file, _ := cmd.Flags().GetString("file")
	debug, _ := cmd.Flags().GetBool("debug")
	format, _ := cmd.Flags().GetString("log-format")
	redisAddr, _ := cmd.Flags().GetString("redis")
	redisTTL, _ := cmd.Flags().GetDuration("redis-ttl")
	tools, _ := cmd.Flags().GetString("tools")
	redact, _ := cmd.Flags().GetStringSlice("redact")

	// Keys never travel on the command line.
	key := os.Getenv("DEPENDENTS_ENCRYPTION_KEY")

	return cli.Options{
		File:          file,
		Debug:         debug,
		LogFormat:     format,
		Redis:         redisAddr,
		RedisTTL:      redisTTL,
		Tools:         tools,
		EncryptionKey: key,
		Redact:        redact,
	}
}
