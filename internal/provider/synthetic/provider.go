// Package synthetic implements a ratings provider that fabricates
// reproducible analyst ratings. It exists to exercise the ranking engine and
// to demo the pipeline without vendor credentials.
package synthetic

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

var firms = []string{
	"Goldman Sachs",
	"Morgan Stanley",
	"JP Morgan",
	"Bank of America",
	"Citigroup",
	"Wells Fargo",
	"Barclays",
	"Deutsche Bank",
	"Credit Suisse",
	"UBS",
	"Jefferies",
	"Raymond James",
	"Piper Sandler",
	"Stifel",
	"Cowen",
}

// categoryWeights skews generation toward hold and buy calls, roughly
// matching real sell-side distributions.
var categoryWeights = []struct {
	category contracts.RatingCategory
	weight   int
}{
	{contracts.RatingStrongBuy, 5},
	{contracts.RatingBuy, 30},
	{contracts.RatingHold, 40},
	{contracts.RatingSell, 20},
	{contracts.RatingStrongSell, 5},
}

// Provider generates deterministic synthetic ratings from a seeded source.
// Generate must run before any query returns data.
type Provider struct {
	numAnalysts       int
	ratingsPerAnalyst int
	rng               *rand.Rand

	mu        sync.Mutex
	generated bool
	analysts  []contracts.AnalystRecord
	ratings   []contracts.RatingRecord
}

// NewProvider creates a synthetic provider. The same seed and inputs always
// produce the same data.
func NewProvider(numAnalysts, ratingsPerAnalyst int, seed int64) *Provider {
	return &Provider{
		numAnalysts:       numAnalysts,
		ratingsPerAnalyst: ratingsPerAnalyst,
		rng:               rand.New(rand.NewSource(seed)),
	}
}

// Name identifies this provider in logs and composite fallback chains.
func (p *Provider) Name() string {
	return "synthetic"
}

// Generate populates the provider with analysts and ratings covering the
// given tickers across [from, to]. Repeated calls are no-ops.
func (p *Provider) Generate(tickers []string, from, to time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.generated || len(tickers) == 0 {
		return
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -5*365)
	}

	p.generateAnalysts()
	p.generateRatings(tickers, from, to)
	p.generated = true
}

func (p *Provider) generateAnalysts() {
	for i := 0; i < p.numAnalysts; i++ {
		p.analysts = append(p.analysts, contracts.AnalystRecord{
			AnalystID: fmt.Sprintf("syn_%04d", i),
			Name:      fmt.Sprintf("Analyst %d", i+1),
			Firm:      firms[p.rng.Intn(len(firms))],
		})
	}
}

func (p *Provider) generateRatings(tickers []string, from, to time.Time) {
	dayRange := int(to.Sub(from).Hours() / 24)
	if dayRange < 0 {
		return
	}

	for _, analyst := range p.analysts {
		covered := p.sampleTickers(tickers)
		count := p.ratingsPerAnalyst/2 + p.rng.Intn(p.ratingsPerAnalyst*2-p.ratingsPerAnalyst/2+1)

		for i := 0; i < count; i++ {
			category := p.pickCategory()
			basePrice := 20 + p.rng.Float64()*480
			target := math.Round(basePrice*p.targetMultiplier(category)*100) / 100

			day := from.AddDate(0, 0, p.rng.Intn(dayRange+1))
			p.ratings = append(p.ratings, contracts.RatingRecord{
				AnalystID:   analyst.AnalystID,
				Ticker:      covered[p.rng.Intn(len(covered))],
				Date:        time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
				Category:    category,
				PriceTarget: &target,
			})
		}
	}
}

// sampleTickers picks a random subset an analyst covers.
func (p *Provider) sampleTickers(tickers []string) []string {
	n := 10 + p.rng.Intn(41)
	if n > len(tickers) {
		n = len(tickers)
	}
	perm := p.rng.Perm(len(tickers))
	covered := make([]string, n)
	for i := 0; i < n; i++ {
		covered[i] = tickers[perm[i]]
	}
	return covered
}

func (p *Provider) pickCategory() contracts.RatingCategory {
	total := 0
	for _, cw := range categoryWeights {
		total += cw.weight
	}
	pick := p.rng.Intn(total)
	for _, cw := range categoryWeights {
		if pick < cw.weight {
			return cw.category
		}
		pick -= cw.weight
	}
	return contracts.RatingHold
}

// targetMultiplier draws a price-target multiplier from the band matching
// the call's direction.
func (p *Provider) targetMultiplier(category contracts.RatingCategory) float64 {
	within := func(lo, hi float64) float64 {
		return lo + p.rng.Float64()*(hi-lo)
	}
	switch category {
	case contracts.RatingStrongBuy:
		return within(1.15, 1.40)
	case contracts.RatingBuy:
		return within(1.05, 1.20)
	case contracts.RatingSell:
		return within(0.80, 0.95)
	case contracts.RatingStrongSell:
		return within(0.60, 0.80)
	default:
		return within(0.95, 1.05)
	}
}

// Analysts returns the generated analysts.
func (p *Provider) Analysts(ctx context.Context) ([]contracts.AnalystRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]contracts.AnalystRecord(nil), p.analysts...), nil
}

// RatingsForCompany filters generated ratings by ticker.
func (p *Provider) RatingsForCompany(ctx context.Context, ticker string, from, to time.Time) ([]contracts.RatingRecord, error) {
	return p.filter(func(r contracts.RatingRecord) bool {
		return r.Ticker == ticker && contracts.InRange(r.Date, from, to)
	}), nil
}

// RatingsForAnalyst filters generated ratings by analyst id.
func (p *Provider) RatingsForAnalyst(ctx context.Context, analystID string, from, to time.Time) ([]contracts.RatingRecord, error) {
	return p.filter(func(r contracts.RatingRecord) bool {
		return r.AnalystID == analystID && contracts.InRange(r.Date, from, to)
	}), nil
}

// AllRatings returns every generated rating within the bounds.
func (p *Provider) AllRatings(ctx context.Context, from, to time.Time) ([]contracts.RatingRecord, error) {
	return p.filter(func(r contracts.RatingRecord) bool {
		return contracts.InRange(r.Date, from, to)
	}), nil
}

func (p *Provider) filter(keep func(contracts.RatingRecord) bool) []contracts.RatingRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []contracts.RatingRecord
	for _, r := range p.ratings {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
