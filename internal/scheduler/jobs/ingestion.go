// Package jobs defines the scheduled pipeline jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/ethanwoods/stockrank/internal/ingest"
	"github.com/ethanwoods/stockrank/internal/jobtrack"
	"github.com/ethanwoods/stockrank/pkg/config"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// IngestionJob runs the full ingestion pipeline nightly, after US market
// close.
type IngestionJob struct {
	orchestrator *ingest.Orchestrator
	tracker      *jobtrack.Tracker
	config       *config.Config
	logger       *logger.Logger
}

// NewIngestionJob creates the nightly ingestion job.
func NewIngestionJob(o *ingest.Orchestrator, tracker *jobtrack.Tracker, cfg *config.Config, log *logger.Logger) *IngestionJob {
	return &IngestionJob{orchestrator: o, tracker: tracker, config: cfg, logger: log}
}

// Name returns the job name.
func (j *IngestionJob) Name() string {
	return "full_ingestion"
}

// Schedule runs at 02:00 UTC daily.
func (j *IngestionJob) Schedule() string {
	return "0 0 2 * * *"
}

// Run executes the full ingestion, tracked as a job record.
func (j *IngestionJob) Run(ctx context.Context) error {
	return j.tracker.Run(ctx, j.Name(), func(ctx context.Context) (string, error) {
		stats, err := j.orchestrator.RunFullIngestion(ctx, j.config.Ingestion.PriceYears, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("companies=%d prices=%d current_prices=%d ratings=%d analysts=%d",
			stats.Companies, stats.Prices, stats.CurrentPrices, stats.Ratings, stats.Analysts), nil
	})
}
