package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// JobRepository implements contracts.JobRepository.
type JobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository.
func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// Create records the start of a run and returns its id.
func (r *JobRepository) Create(ctx context.Context, jobType string, start time.Time) (int64, error) {
	query := `
		INSERT INTO jobs (job_type, status, start_time)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, jobType, string(contracts.JobRunning), start).Scan(&id)
	return id, err
}

// Finish records the terminal status of a run.
func (r *JobRepository) Finish(ctx context.Context, id int64, status contracts.JobStatus, end time.Time, detail string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE jobs SET status = $2, end_time = $3, detail = $4 WHERE id = $1`,
		id, string(status), end, detail,
	)
	return err
}

// List returns the most recent runs first.
func (r *JobRepository) List(ctx context.Context, limit int) ([]contracts.JobRecord, error) {
	query := `
		SELECT id, job_type, status, start_time, end_time, COALESCE(detail, '')
		FROM jobs
		ORDER BY start_time DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []contracts.JobRecord
	for rows.Next() {
		var j contracts.JobRecord
		var status string
		if err := rows.Scan(&j.ID, &j.JobType, &status, &j.StartTime, &j.EndTime, &j.Detail); err != nil {
			return nil, err
		}
		j.Status = contracts.JobStatus(status)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
