package jobs

import (
	"context"
	"fmt"

	"github.com/ethanwoods/stockrank/internal/jobtrack"
	"github.com/ethanwoods/stockrank/internal/ranking"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// RankingJob rebuilds analyst confidence and company scores nightly, after
// the ingestion job has landed fresh data.
type RankingJob struct {
	engine  *ranking.Engine
	tracker *jobtrack.Tracker
	logger  *logger.Logger
}

// NewRankingJob creates the nightly ranking job.
func NewRankingJob(engine *ranking.Engine, tracker *jobtrack.Tracker, log *logger.Logger) *RankingJob {
	return &RankingJob{engine: engine, tracker: tracker, logger: log}
}

// Name returns the job name.
func (j *RankingJob) Name() string {
	return "full_ranking"
}

// Schedule runs at 04:00 UTC daily, two hours after ingestion starts.
func (j *RankingJob) Schedule() string {
	return "0 0 4 * * *"
}

// Run executes the full ranking, tracked as a job record.
func (j *RankingJob) Run(ctx context.Context) error {
	return j.tracker.Run(ctx, j.Name(), func(ctx context.Context) (string, error) {
		stats, err := j.engine.RunFullRanking(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("analysts_ranked=%d companies_ranked=%d",
			stats.AnalystsRanked, stats.CompaniesRanked), nil
	})
}
