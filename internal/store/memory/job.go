package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// JobRepository is an in-memory contracts.JobRepository.
type JobRepository struct {
	mu     sync.RWMutex
	jobs   []contracts.JobRecord
	nextID int64
}

// NewJobRepository creates an empty job repository.
func NewJobRepository() *JobRepository {
	return &JobRepository{nextID: 1}
}

// Create records the start of a run and returns its id.
func (r *JobRepository) Create(ctx context.Context, jobType string, start time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.jobs = append(r.jobs, contracts.JobRecord{
		ID:        id,
		JobType:   jobType,
		Status:    contracts.JobRunning,
		StartTime: start,
	})
	return id, nil
}

// Finish records the terminal status of a run.
func (r *JobRepository) Finish(ctx context.Context, id int64, status contracts.JobStatus, end time.Time, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.jobs {
		if r.jobs[i].ID == id {
			endCopy := end
			r.jobs[i].Status = status
			r.jobs[i].EndTime = &endCopy
			r.jobs[i].Detail = detail
			break
		}
	}
	return nil
}

// List returns the most recent runs first.
func (r *JobRepository) List(ctx context.Context, limit int) ([]contracts.JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contracts.JobRecord, len(r.jobs))
	copy(out, r.jobs)
	// Newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
