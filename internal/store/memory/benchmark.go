package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// BenchmarkRepository is an in-memory contracts.BenchmarkRepository.
type BenchmarkRepository struct {
	mu     sync.RWMutex
	prices map[string]map[string]contracts.BenchmarkPrice // symbol -> day -> close
}

// NewBenchmarkRepository creates an empty benchmark repository.
func NewBenchmarkRepository() *BenchmarkRepository {
	return &BenchmarkRepository{prices: make(map[string]map[string]contracts.BenchmarkPrice)}
}

// LatestDate returns the most recent stored date for a symbol.
func (r *BenchmarkRepository) LatestDate(ctx context.Context, symbol string) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	days, ok := r.prices[symbol]
	if !ok || len(days) == 0 {
		return nil, nil
	}

	var latest time.Time
	for _, p := range days {
		if p.Date.After(latest) {
			latest = p.Date
		}
	}
	return &latest, nil
}

// InsertBatch stores closes, skipping (symbol, date) keys already present.
func (r *BenchmarkRepository) InsertBatch(ctx context.Context, prices []contracts.BenchmarkPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range prices {
		days, ok := r.prices[p.Symbol]
		if !ok {
			days = make(map[string]contracts.BenchmarkPrice)
			r.prices[p.Symbol] = days
		}
		key := dateKey(p.Date)
		if _, exists := days[key]; exists {
			continue
		}
		days[key] = p
	}
	return nil
}

// Range returns closes for a symbol within [from, to], ordered by date.
func (r *BenchmarkRepository) Range(ctx context.Context, symbol string, from, to time.Time) ([]contracts.BenchmarkPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []contracts.BenchmarkPrice
	for _, p := range r.prices[symbol] {
		if contracts.InRange(p.Date, from, to) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
