package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run ingestion then ranking in one pass",
	Long: `Runs the full pipeline end to end.

Stages:
1. Full data ingestion (companies, prices, ratings, analysts)
2. Full ranking (analyst confidence, company investment scores)

Example:
  go run ./cmd/stockrank run
  go run ./cmd/stockrank run --synthetic-ratings --limit 20`,
	RunE: runPipeline,
}

var (
	pipelineLimit     int
	pipelineSynthetic bool
	pipelineSeed      int64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&pipelineLimit, "limit", 0, "limit the number of companies (0 = all)")
	runCmd.Flags().BoolVar(&pipelineSynthetic, "synthetic-ratings", false, "use generated ratings instead of vendor data")
	runCmd.Flags().Int64Var(&pipelineSeed, "seed", 42, "seed for generated ratings")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== stockrank full pipeline ===")

	a, err := initApp(pipelineSynthetic, pipelineSeed)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()

	err = a.tracker.Run(ctx, "full_ingestion", func(ctx context.Context) (string, error) {
		s, err := a.orch.RunFullIngestion(ctx, a.cfg.Ingestion.PriceYears, pipelineLimit)
		if err != nil {
			return "", err
		}
		fmt.Printf("  Ingested %d companies, %d price bars, %d ratings\n", s.Companies, s.Prices, s.Ratings)
		return fmt.Sprintf("companies=%d prices=%d ratings=%d analysts=%d",
			s.Companies, s.Prices, s.Ratings, s.Analysts), nil
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	err = a.tracker.Run(ctx, "full_ranking", func(ctx context.Context) (string, error) {
		s, err := a.engine.RunFullRanking(ctx)
		if err != nil {
			return "", err
		}
		fmt.Printf("  Ranked %d analysts, %d companies\n", s.AnalystsRanked, s.CompaniesRanked)
		return fmt.Sprintf("analysts=%d companies=%d", s.AnalystsRanked, s.CompaniesRanked), nil
	})
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	fmt.Println("\n✅ Pipeline complete")
	return nil
}
