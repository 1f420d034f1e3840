package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/predmarkets/arbwatch/internal/app"
	"github.com/predmarkets/arbwatch/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the arbitrage watcher",
	Long: `Starts the arbitrage watcher, which will:
1. Fetch open markets from both venues and pair them by title similarity
2. Stream top-of-book prices from Polymarket and Kalshi over WebSocket
3. Re-evaluate every pair each second for the two covering combinations
4. Publish opportunities above the threshold on GET /arbs

Kalshi streaming requires KALSHI_KEY_ID and KALSHI_PRIVATE_KEY_PATH; when
either is absent the Kalshi side is disabled and no opportunities are
produced.`,
	RunE: runWatcher,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runWatcher(cmd *cobra.Command, args []string) error {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
