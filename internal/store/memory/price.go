package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// PriceRepository is an in-memory contracts.PriceRepository. Bars are
// keyed by (ticker, date); inserting an existing key is a silent no-op,
// matching ON CONFLICT DO NOTHING in the postgres store.
type PriceRepository struct {
	mu   sync.RWMutex
	bars map[string]map[string]contracts.PriceBar // ticker -> day -> bar
}

// NewPriceRepository creates an empty price repository.
func NewPriceRepository() *PriceRepository {
	return &PriceRepository{bars: make(map[string]map[string]contracts.PriceBar)}
}

// LatestDate returns the most recent stored bar date for a ticker.
func (r *PriceRepository) LatestDate(ctx context.Context, ticker string) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	days, ok := r.bars[ticker]
	if !ok || len(days) == 0 {
		return nil, nil
	}

	var latest time.Time
	for _, bar := range days {
		if bar.Date.After(latest) {
			latest = bar.Date
		}
	}
	return &latest, nil
}

// InsertBatch stores bars, skipping (ticker, date) keys already present.
func (r *PriceRepository) InsertBatch(ctx context.Context, bars []contracts.PriceBar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, bar := range bars {
		days, ok := r.bars[bar.Ticker]
		if !ok {
			days = make(map[string]contracts.PriceBar)
			r.bars[bar.Ticker] = days
		}
		key := dateKey(bar.Date)
		if _, exists := days[key]; exists {
			continue
		}
		days[key] = bar
	}
	return nil
}

// Range returns bars for a ticker within [from, to], ordered by date.
func (r *PriceRepository) Range(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PriceBar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []contracts.PriceBar
	for _, bar := range r.bars[ticker] {
		if contracts.InRange(bar.Date, from, to) {
			out = append(out, bar)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Count returns the number of stored bars for a ticker.
func (r *PriceRepository) Count(ticker string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bars[ticker])
}
