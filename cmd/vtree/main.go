package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	env := &environment{}

	rootCmd := &cobra.Command{
		Use:   "vtree",
		Short: "Diff, render and reconcile virtual trees",
		Long: `vtree reconciles virtual trees described in YAML or JSON documents.

It computes patch lists between two trees, renders trees to HTML,
replays a sequence of trees through a live reconciler and serves a
live preview that streams every pass to connected mirrors.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env.configPath, "config", "c", "", "Path to vtree.json or its directory (default: nearest vtree.json)")
	rootCmd.PersistentFlags().StringVar(&env.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&env.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		diffCmd(env),
		renderCmd(env),
		applyCmd(env),
		serveCmd(env),
		versionCmd(),
	)
	return rootCmd
}
