package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the full data ingestion pipeline",
	Long: `Runs every ingestion stage in order.

This command:
- Syncs the S&P 500 company universe
- Backfills daily price history incrementally
- Fetches analyst ratings and deduplicates them
- Refreshes analyst profiles and current prices

Example:
  go run ./cmd/stockrank ingest
  go run ./cmd/stockrank ingest --years 3 --limit 50
  go run ./cmd/stockrank ingest --synthetic-ratings --seed 7`,
	RunE: runIngest,
}

var (
	ingestYears     int
	ingestLimit     int
	ingestSynthetic bool
	ingestSeed      int64
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntVar(&ingestYears, "years", 0, "years of price history (default from config)")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "limit the number of companies (0 = all)")
	ingestCmd.Flags().BoolVar(&ingestSynthetic, "synthetic-ratings", false, "use generated ratings instead of vendor data")
	ingestCmd.Flags().Int64Var(&ingestSeed, "seed", 42, "seed for generated ratings")
}

func runIngest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== stockrank ingestion ===")

	a, err := initApp(ingestSynthetic, ingestSeed)
	if err != nil {
		return err
	}
	defer a.close()

	years := ingestYears
	if years <= 0 {
		years = a.cfg.Ingestion.PriceYears
	}

	ctx := context.Background()
	var stats *contracts.IngestionStats
	err = a.tracker.Run(ctx, "full_ingestion", func(ctx context.Context) (string, error) {
		s, err := a.orch.RunFullIngestion(ctx, years, ingestLimit)
		if err != nil {
			return "", err
		}
		stats = s
		return fmt.Sprintf("companies=%d prices=%d ratings=%d analysts=%d",
			s.Companies, s.Prices, s.Ratings, s.Analysts), nil
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Println("\n✅ Ingestion complete")
	fmt.Printf("  Companies: %d\n", stats.Companies)
	fmt.Printf("  Price bars: %d\n", stats.Prices)
	fmt.Printf("  Ratings: %d\n", stats.Ratings)
	fmt.Printf("  Analysts: %d\n", stats.Analysts)
	return nil
}
