package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// CompanyRepository is an in-memory contracts.CompanyRepository.
type CompanyRepository struct {
	mu        sync.RWMutex
	companies map[string]contracts.Company
}

// NewCompanyRepository creates an empty company repository.
func NewCompanyRepository() *CompanyRepository {
	return &CompanyRepository{companies: make(map[string]contracts.Company)}
}

// Get returns the company for a ticker, or nil when unknown.
func (r *CompanyRepository) Get(ctx context.Context, ticker string) (*contracts.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[ticker]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ListTickers returns all known tickers in lexical order.
func (r *CompanyRepository) ListTickers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tickers := make([]string, 0, len(r.companies))
	for t := range r.companies {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// Upsert inserts or overwrites descriptive fields. Derived fields on an
// existing row are preserved.
func (r *CompanyRepository) Upsert(ctx context.Context, company *contracts.Company) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.companies[company.Ticker]
	if ok {
		existing.Name = company.Name
		existing.Sector = company.Sector
		existing.Industry = company.Industry
		existing.MarketCap = company.MarketCap
		r.companies[company.Ticker] = existing
		return false, nil
	}

	r.companies[company.Ticker] = *company
	return true, nil
}

// UpdateCurrentPrice sets the latest traded price of a known company.
func (r *CompanyRepository) UpdateCurrentPrice(ctx context.Context, ticker string, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.companies[ticker]
	if !ok {
		return nil
	}
	c.CurrentPrice = price
	r.companies[ticker] = c
	return nil
}

// UpdateScores sets the derived investment score and target price.
func (r *CompanyRepository) UpdateScores(ctx context.Context, ticker string, investmentScore, targetPrice *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.companies[ticker]
	if !ok {
		return nil
	}
	c.InvestmentScore = copyFloat(investmentScore)
	c.TargetPrice = copyFloat(targetPrice)
	r.companies[ticker] = c
	return nil
}

// ListRanked returns companies ordered by investment score descending,
// unscored companies last.
func (r *CompanyRepository) ListRanked(ctx context.Context, limit int) ([]contracts.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	companies := make([]contracts.Company, 0, len(r.companies))
	for _, c := range r.companies {
		companies = append(companies, c)
	}

	sort.Slice(companies, func(i, j int) bool {
		a, b := companies[i].InvestmentScore, companies[j].InvestmentScore
		switch {
		case a == nil && b == nil:
			return companies[i].Ticker < companies[j].Ticker
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return companies[i].Ticker < companies[j].Ticker
		}
	})

	if limit > 0 && len(companies) > limit {
		companies = companies[:limit]
	}
	return companies, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
