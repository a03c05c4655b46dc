package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// benchmarkCmd represents the benchmark command
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Sync benchmark index prices",
	Long: `Backfills daily prices for a benchmark symbol.

Benchmark prices are stored separately from company prices and are not
part of the full ingestion run.

Example:
  go run ./cmd/stockrank benchmark
  go run ./cmd/stockrank benchmark --symbol QQQ --years 3`,
	RunE: runBenchmark,
}

var (
	benchmarkSymbol string
	benchmarkYears  int
)

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().StringVar(&benchmarkSymbol, "symbol", "", "benchmark ticker (default from config)")
	benchmarkCmd.Flags().IntVar(&benchmarkYears, "years", 0, "years of history (default from config)")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	a, err := initApp(false, 0)
	if err != nil {
		return err
	}
	defer a.close()

	symbol := benchmarkSymbol
	if symbol == "" {
		symbol = a.cfg.Ingestion.BenchmarkSymbol
	}
	years := benchmarkYears
	if years <= 0 {
		years = a.cfg.Ingestion.PriceYears
	}

	ctx := context.Background()
	err = a.tracker.Run(ctx, "benchmark_sync", func(ctx context.Context) (string, error) {
		n, err := a.orch.SyncBenchmark(ctx, symbol, years)
		if err != nil {
			return "", err
		}
		fmt.Printf("✅ Synced %d benchmark prices for %s\n", n, symbol)
		return fmt.Sprintf("symbol=%s prices=%d", symbol, n), nil
	})
	if err != nil {
		return fmt.Errorf("benchmark sync failed: %w", err)
	}
	return nil
}
