package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockrank",
	Short: "stockrank - analyst rating backtesting and company scoring",
	Long: `stockrank CLI

Ingests S&P 500 price history and analyst ratings, backtests each
analyst's calls against subsequent price moves, and rolls the resulting
confidence scores up into per-company investment scores.

Usage:
  go run ./cmd/stockrank [command]

Examples:
  go run ./cmd/stockrank ingest --years 5
  go run ./cmd/stockrank rank
  go run ./cmd/stockrank api
  go run ./cmd/stockrank scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
