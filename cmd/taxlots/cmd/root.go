package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taxlots",
	Short: "Cost basis and realized gains from exchange ledgers",
	Long: `Taxlots rebuilds per-asset cost basis from raw exchange account tables.

It provides tools for:
  - Grouping ledger lines into logical transactions
  - Tracking open cost-basis lots per asset (highest cost disposed first)
  - Carrying basis across asset-for-asset trades
  - Computing the realized gain/loss ("tax obligation") per asset
  - Journaling disposals and positions to SQLite or CSV`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	logLevel  string
	logFormat string
)

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}
