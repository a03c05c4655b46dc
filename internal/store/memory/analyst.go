package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// AnalystRepository is an in-memory contracts.AnalystRepository.
type AnalystRepository struct {
	mu       sync.RWMutex
	analysts map[string]contracts.Analyst
}

// NewAnalystRepository creates an empty analyst repository.
func NewAnalystRepository() *AnalystRepository {
	return &AnalystRepository{analysts: make(map[string]contracts.Analyst)}
}

// Get returns the analyst for an id, or nil when unknown.
func (r *AnalystRepository) Get(ctx context.Context, analystID string) (*contracts.Analyst, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.analysts[analystID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// List returns all analysts in id order.
func (r *AnalystRepository) List(ctx context.Context) ([]contracts.Analyst, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contracts.Analyst, 0, len(r.analysts))
	for _, a := range r.analysts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AnalystID < out[j].AnalystID })
	return out, nil
}

// Upsert inserts or overwrites name and firm. Confidence fields on an
// existing row are preserved.
func (r *AnalystRepository) Upsert(ctx context.Context, analyst *contracts.Analyst) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.analysts[analyst.AnalystID]
	if ok {
		existing.Name = analyst.Name
		existing.Firm = analyst.Firm
		r.analysts[analyst.AnalystID] = existing
		return false, nil
	}

	r.analysts[analyst.AnalystID] = *analyst
	return true, nil
}

// UpdateConfidence sets the derived confidence score and evaluated counts.
func (r *AnalystRepository) UpdateConfidence(ctx context.Context, analystID string, score *float64, total, accurate int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.analysts[analystID]
	if !ok {
		return nil
	}
	a.ConfidenceScore = copyFloat(score)
	a.TotalRatings = total
	a.AccurateRatings = accurate
	r.analysts[analystID] = a
	return nil
}

// ListRanked returns analysts ordered by confidence score descending,
// unscored analysts last.
func (r *AnalystRepository) ListRanked(ctx context.Context, limit int) ([]contracts.Analyst, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contracts.Analyst, 0, len(r.analysts))
	for _, a := range r.analysts {
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ConfidenceScore, out[j].ConfidenceScore
		switch {
		case a == nil && b == nil:
			return out[i].AnalystID < out[j].AnalystID
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return out[i].AnalystID < out[j].AnalystID
		}
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
