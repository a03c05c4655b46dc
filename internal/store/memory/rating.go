package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// RatingRepository is an in-memory contracts.RatingRepository. Ratings are
// unique per (analyst id, ticker, date); duplicate inserts are dropped.
type RatingRepository struct {
	mu      sync.RWMutex
	ratings map[int64]contracts.Rating
	keys    map[string]int64 // dedup key -> id
	nextID  int64
}

// NewRatingRepository creates an empty rating repository.
func NewRatingRepository() *RatingRepository {
	return &RatingRepository{
		ratings: make(map[int64]contracts.Rating),
		keys:    make(map[string]int64),
		nextID:  1,
	}
}

func ratingKey(analystID, ticker string, date time.Time) string {
	return analystID + "|" + ticker + "|" + dateKey(date)
}

// Exists reports whether a rating with the same dedup key is stored.
func (r *RatingRepository) Exists(ctx context.Context, analystID, ticker string, date time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.keys[ratingKey(analystID, ticker, date)]
	return ok, nil
}

// InsertBatch stores ratings, dropping any whose dedup key already exists.
func (r *RatingRepository) InsertBatch(ctx context.Context, ratings []contracts.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rating := range ratings {
		key := ratingKey(rating.AnalystID, rating.Ticker, rating.Date)
		if _, exists := r.keys[key]; exists {
			continue
		}
		rating.ID = r.nextID
		r.nextID++
		r.ratings[rating.ID] = rating
		r.keys[key] = rating.ID
	}
	return nil
}

// ListByAnalystBefore returns an analyst's ratings dated on or before the
// cutoff, ordered by date.
func (r *RatingRepository) ListByAnalystBefore(ctx context.Context, analystID string, cutoff time.Time) ([]contracts.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []contracts.Rating
	for _, rating := range r.ratings {
		if rating.AnalystID == analystID && !rating.Date.After(cutoff) {
			out = append(out, rating)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ListByTickerSince returns a ticker's ratings dated on or after since,
// ordered by date.
func (r *RatingRepository) ListByTickerSince(ctx context.Context, ticker string, since time.Time) ([]contracts.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []contracts.Rating
	for _, rating := range r.ratings {
		if rating.Ticker == ticker && !rating.Date.Before(since) {
			out = append(out, rating)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// UpdateOutcome persists the backtested result on a rating.
func (r *RatingRepository) UpdateOutcome(ctx context.Context, id int64, actualReturn float64, wasAccurate bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rating, ok := r.ratings[id]
	if !ok {
		return nil
	}
	ret := actualReturn
	acc := wasAccurate
	rating.ActualReturn = &ret
	rating.WasAccurate = &acc
	r.ratings[id] = rating
	return nil
}

// Count returns the number of stored ratings.
func (r *RatingRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ratings)
}
