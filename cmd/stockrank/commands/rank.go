package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Run the full ranking pipeline",
	Long: `Backtests stored analyst ratings and scores companies.

This command:
- Evaluates each analyst's past calls against subsequent price moves
- Updates analyst confidence scores
- Computes confidence-weighted investment scores per company

Example:
  go run ./cmd/stockrank rank
  go run ./cmd/stockrank rank --horizon 60 --min-ratings 3`,
	RunE: runRank,
}

var (
	rankHorizon    int
	rankMinRatings int
)

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntVar(&rankHorizon, "horizon", 0, "evaluation horizon in days (default from config)")
	rankCmd.Flags().IntVar(&rankMinRatings, "min-ratings", 0, "minimum evaluated ratings for a confidence score (default from config)")
}

func runRank(cmd *cobra.Command, args []string) error {
	fmt.Println("=== stockrank ranking ===")

	a, err := initApp(false, 0)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	var stats *contracts.RankingStats
	err = a.tracker.Run(ctx, "full_ranking", func(ctx context.Context) (string, error) {
		s, err := a.engine.RunFullRanking(ctx)
		if err != nil {
			return "", err
		}
		stats = s
		return fmt.Sprintf("analysts=%d companies=%d", s.AnalystsRanked, s.CompaniesRanked), nil
	})
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	fmt.Println("\n✅ Ranking complete")
	fmt.Printf("  Analysts ranked: %d\n", stats.AnalystsRanked)
	fmt.Printf("  Companies ranked: %d\n", stats.CompaniesRanked)
	return nil
}
