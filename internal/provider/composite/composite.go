// Package composite combines multiple data providers behind the single
// provider contracts, so real prices can be paired with supplemental or
// multi-vendor ratings.
package composite

import (
	"context"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// Provider fans out to an ordered list of stock providers (first non-empty
// result wins, failures logged and skipped) and a list of ratings providers
// combined in aggregate or first-success mode.
type Provider struct {
	stockProviders   []contracts.StockProvider
	ratingsProviders []contracts.RatingsProvider
	aggregateRatings bool
	logger           *logger.Logger
}

// New creates a composite provider. With aggregateRatings the ratings
// queries union every source; otherwise the first source with data wins.
func New(stock []contracts.StockProvider, ratings []contracts.RatingsProvider, aggregateRatings bool, log *logger.Logger) *Provider {
	return &Provider{
		stockProviders:   stock,
		ratingsProviders: ratings,
		aggregateRatings: aggregateRatings,
		logger:           log,
	}
}

// Name identifies the composite in logs.
func (p *Provider) Name() string {
	return "composite"
}

// ListUniverse returns the universe from the first provider with data.
func (p *Provider) ListUniverse(ctx context.Context) ([]contracts.CompanyRecord, error) {
	for _, sp := range p.stockProviders {
		companies, err := sp.ListUniverse(ctx)
		if err != nil {
			p.logger.WithError(err).WithField("provider", sp.Name()).Warn("Universe provider failed")
			continue
		}
		if len(companies) > 0 {
			return companies, nil
		}
	}
	return nil, nil
}

// PriceHistory returns bars from the first provider with data.
func (p *Provider) PriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.PriceBar, error) {
	for _, sp := range p.stockProviders {
		bars, err := sp.PriceHistory(ctx, ticker, start, end)
		if err != nil {
			p.logger.WithError(err).WithFields(map[string]interface{}{
				"provider": sp.Name(),
				"ticker":   ticker,
			}).Warn("Price provider failed")
			continue
		}
		if len(bars) > 0 {
			return bars, nil
		}
	}
	return nil, nil
}

// CurrentPrice returns the first non-nil price.
func (p *Provider) CurrentPrice(ctx context.Context, ticker string) (*float64, error) {
	for _, sp := range p.stockProviders {
		price, err := sp.CurrentPrice(ctx, ticker)
		if err != nil {
			p.logger.WithError(err).WithFields(map[string]interface{}{
				"provider": sp.Name(),
				"ticker":   ticker,
			}).Warn("Current price provider failed")
			continue
		}
		if price != nil {
			return price, nil
		}
	}
	return nil, nil
}

// Analysts returns the deduplicated union of all sources in aggregate mode,
// later sources overwriting earlier ones for the same id; otherwise the
// first non-empty source.
func (p *Provider) Analysts(ctx context.Context) ([]contracts.AnalystRecord, error) {
	if !p.aggregateRatings {
		for _, rp := range p.ratingsProviders {
			analysts, err := rp.Analysts(ctx)
			if err != nil {
				p.logger.WithError(err).WithField("provider", rp.Name()).Warn("Analyst provider failed")
				continue
			}
			if len(analysts) > 0 {
				return analysts, nil
			}
		}
		return nil, nil
	}

	merged := make(map[string]contracts.AnalystRecord)
	var order []string
	for _, rp := range p.ratingsProviders {
		analysts, err := rp.Analysts(ctx)
		if err != nil {
			p.logger.WithError(err).WithField("provider", rp.Name()).Warn("Analyst provider failed")
			continue
		}
		for _, a := range analysts {
			if _, seen := merged[a.AnalystID]; !seen {
				order = append(order, a.AnalystID)
			}
			merged[a.AnalystID] = a
		}
	}

	out := make([]contracts.AnalystRecord, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out, nil
}

// RatingsForCompany combines per-company ratings across sources.
func (p *Provider) RatingsForCompany(ctx context.Context, ticker string, from, to time.Time) ([]contracts.RatingRecord, error) {
	return p.combineRatings(func(rp contracts.RatingsProvider) ([]contracts.RatingRecord, error) {
		return rp.RatingsForCompany(ctx, ticker, from, to)
	})
}

// RatingsForAnalyst combines per-analyst ratings across sources.
func (p *Provider) RatingsForAnalyst(ctx context.Context, analystID string, from, to time.Time) ([]contracts.RatingRecord, error) {
	return p.combineRatings(func(rp contracts.RatingsProvider) ([]contracts.RatingRecord, error) {
		return rp.RatingsForAnalyst(ctx, analystID, from, to)
	})
}

// AllRatings combines every rating across sources.
func (p *Provider) AllRatings(ctx context.Context, from, to time.Time) ([]contracts.RatingRecord, error) {
	return p.combineRatings(func(rp contracts.RatingsProvider) ([]contracts.RatingRecord, error) {
		return rp.AllRatings(ctx, from, to)
	})
}

func (p *Provider) combineRatings(fetch func(contracts.RatingsProvider) ([]contracts.RatingRecord, error)) ([]contracts.RatingRecord, error) {
	if !p.aggregateRatings {
		for _, rp := range p.ratingsProviders {
			ratings, err := fetch(rp)
			if err != nil {
				p.logger.WithError(err).WithField("provider", rp.Name()).Warn("Ratings provider failed")
				continue
			}
			if len(ratings) > 0 {
				return ratings, nil
			}
		}
		return nil, nil
	}

	var all []contracts.RatingRecord
	for _, rp := range p.ratingsProviders {
		ratings, err := fetch(rp)
		if err != nil {
			p.logger.WithError(err).WithField("provider", rp.Name()).Warn("Ratings provider failed")
			continue
		}
		all = append(all, ratings...)
	}
	return all, nil
}
