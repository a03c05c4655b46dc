package jobs

import (
	"context"
	"fmt"

	"github.com/ethanwoods/stockrank/internal/ingest"
	"github.com/ethanwoods/stockrank/internal/jobtrack"
	"github.com/ethanwoods/stockrank/pkg/config"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// BenchmarkJob tops up the benchmark index history weekly. It runs on its
// own schedule because benchmark closes change far less often than the
// per-company data.
type BenchmarkJob struct {
	orchestrator *ingest.Orchestrator
	tracker      *jobtrack.Tracker
	config       *config.Config
	logger       *logger.Logger
}

// NewBenchmarkJob creates the weekly benchmark sync job.
func NewBenchmarkJob(o *ingest.Orchestrator, tracker *jobtrack.Tracker, cfg *config.Config, log *logger.Logger) *BenchmarkJob {
	return &BenchmarkJob{orchestrator: o, tracker: tracker, config: cfg, logger: log}
}

// Name returns the job name.
func (j *BenchmarkJob) Name() string {
	return "benchmark_sync"
}

// Schedule runs at 03:00 UTC every Saturday.
func (j *BenchmarkJob) Schedule() string {
	return "0 0 3 * * 6"
}

// Run executes the benchmark sync, tracked as a job record.
func (j *BenchmarkJob) Run(ctx context.Context) error {
	return j.tracker.Run(ctx, j.Name(), func(ctx context.Context) (string, error) {
		inserted, err := j.orchestrator.SyncBenchmark(ctx, j.config.Ingestion.BenchmarkSymbol, j.config.Ingestion.PriceYears)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("symbol=%s inserted=%d", j.config.Ingestion.BenchmarkSymbol, inserted), nil
	})
}
