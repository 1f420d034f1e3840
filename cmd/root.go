package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "arbwatch",
	Short: "Cross-venue prediction-market arbitrage watcher",
	Long: `arbwatch watches Polymarket and Kalshi in real time and surfaces
cross-venue arbitrage on binary YES/NO markets.

At startup it pairs comparable markets across both venues by title
similarity, then streams top-of-book prices over WebSocket and re-evaluates
every pair on a fixed cadence. Opportunities whose return on turnover clears
the configured threshold are published on a read-only HTTP endpoint.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
