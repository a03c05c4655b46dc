package jobtrack

import (
	"context"
	"errors"
	"testing"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/internal/store/memory"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

func TestRunCompleted(t *testing.T) {
	repo := memory.NewJobRepository()
	tracker := New(repo, logger.NewNop())
	ctx := context.Background()

	err := tracker.Run(ctx, "full_ingestion", func(ctx context.Context) (string, error) {
		return "companies=500", nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	jobs, err := tracker.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.JobType != "full_ingestion" {
		t.Errorf("Expected job type full_ingestion, got %s", j.JobType)
	}
	if j.Status != contracts.JobCompleted {
		t.Errorf("Expected completed, got %s", j.Status)
	}
	if j.Detail != "companies=500" {
		t.Errorf("Expected detail stored, got %q", j.Detail)
	}
	if j.EndTime == nil {
		t.Error("Expected end time set")
	}
}

func TestRunFailed(t *testing.T) {
	repo := memory.NewJobRepository()
	tracker := New(repo, logger.NewNop())
	ctx := context.Background()

	wantErr := errors.New("provider unavailable")
	err := tracker.Run(ctx, "full_ranking", func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected error propagated, got %v", err)
	}

	jobs, _ := tracker.List(ctx, 10)
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Status != contracts.JobFailed {
		t.Errorf("Expected failed, got %s", jobs[0].Status)
	}
	if jobs[0].Detail != "provider unavailable" {
		t.Errorf("Expected error message captured, got %q", jobs[0].Detail)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := memory.NewJobRepository()
	tracker := New(repo, logger.NewNop())
	ctx := context.Background()

	tracker.Run(ctx, "first", func(ctx context.Context) (string, error) { return "", nil })
	tracker.Run(ctx, "second", func(ctx context.Context) (string, error) { return "", nil })

	jobs, _ := tracker.List(ctx, 1)
	if len(jobs) != 1 {
		t.Fatalf("Expected limit respected, got %d jobs", len(jobs))
	}
}
