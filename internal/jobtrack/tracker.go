// Package jobtrack records pipeline runs so the status surfaces can show
// what ran, when, and how it ended.
package jobtrack

import (
	"context"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// Tracker wraps pipeline invocations with job records.
type Tracker struct {
	jobs   contracts.JobRepository
	logger *logger.Logger
}

// New creates a job tracker.
func New(jobs contracts.JobRepository, log *logger.Logger) *Tracker {
	return &Tracker{jobs: jobs, logger: log.WithField("module", "jobtrack")}
}

// Run records a job around fn. The returned detail string is stored on
// success; on failure the error message is stored and the error propagated.
// Tracking faults are logged, never allowed to mask the job's own result.
func (t *Tracker) Run(ctx context.Context, jobType string, fn func(ctx context.Context) (string, error)) error {
	start := time.Now().UTC()
	id, err := t.jobs.Create(ctx, jobType, start)
	if err != nil {
		t.logger.WithError(err).WithField("job_type", jobType).Error("Failed to create job record")
		id = 0
	}

	detail, runErr := fn(ctx)

	status := contracts.JobCompleted
	if runErr != nil {
		status = contracts.JobFailed
		detail = runErr.Error()
	}

	if id != 0 {
		if err := t.jobs.Finish(ctx, id, status, time.Now().UTC(), detail); err != nil {
			t.logger.WithError(err).WithField("job_type", jobType).Error("Failed to finish job record")
		}
	}

	t.logger.WithFields(map[string]interface{}{
		"job_type": jobType,
		"status":   string(status),
		"duration": time.Since(start).String(),
	}).Info("Job finished")
	return runErr
}

// List returns the most recent job records.
func (t *Tracker) List(ctx context.Context, limit int) ([]contracts.JobRecord, error) {
	return t.jobs.List(ctx, limit)
}
