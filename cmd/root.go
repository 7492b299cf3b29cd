// Package cmd wires the stardust command line: serve, play and sim.
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/robalobadob/stardust-blast/internal/config"
)

// cfg is loaded once before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "stardust",
	Short: "Stardust Blast match-3 engine",
	Long: `Stardust Blast is a match-3 board engine with an HTTP game service,
a terminal client and a headless simulator.

Settings come from the environment (and a local .env file); see
internal/config for the full list.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		zerolog.SetGlobalLevel(cfg.LogLevel)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
