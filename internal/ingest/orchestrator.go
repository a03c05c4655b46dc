// Package ingest orchestrates providers into the stores. Sync of the data
// pipeline happens in this package only.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

const (
	priceBatchSize  = 1000
	ratingBatchSize = 500
)

// Orchestrator pulls data from the configured providers and persists it
// through the repository contracts. Each sync stage is idempotent; a stage
// failure aborts the run without corrupting what earlier stages stored.
type Orchestrator struct {
	stock   contracts.StockProvider
	ratings contracts.RatingsProvider

	companies  contracts.CompanyRepository
	prices     contracts.PriceRepository
	benchmarks contracts.BenchmarkRepository
	analysts   contracts.AnalystRepository
	ratingRepo contracts.RatingRepository

	logger *logger.Logger
}

// Stores bundles the repositories the orchestrator writes to.
type Stores struct {
	Companies  contracts.CompanyRepository
	Prices     contracts.PriceRepository
	Benchmarks contracts.BenchmarkRepository
	Analysts   contracts.AnalystRepository
	Ratings    contracts.RatingRepository
}

// NewOrchestrator creates an ingestion orchestrator.
func NewOrchestrator(stock contracts.StockProvider, ratings contracts.RatingsProvider, stores Stores, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		stock:      stock,
		ratings:    ratings,
		companies:  stores.Companies,
		prices:     stores.Prices,
		benchmarks: stores.Benchmarks,
		analysts:   stores.Analysts,
		ratingRepo: stores.Ratings,
		logger:     log.WithField("module", "ingest"),
	}
}

// SyncCompanies upserts the provider universe, counting only created rows.
func (o *Orchestrator) SyncCompanies(ctx context.Context) (int, error) {
	records, err := o.stock.ListUniverse(ctx)
	if err != nil {
		return 0, fmt.Errorf("list universe: %w", err)
	}

	count := 0
	for _, rec := range records {
		created, err := o.companies.Upsert(ctx, &contracts.Company{
			Ticker:    rec.Ticker,
			Name:      rec.Name,
			Sector:    rec.Sector,
			Industry:  rec.Industry,
			MarketCap: rec.MarketCap,
		})
		if err != nil {
			return count, fmt.Errorf("upsert company %s: %w", rec.Ticker, err)
		}
		if created {
			count++
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"universe": len(records),
		"created":  count,
	}).Info("Company sync completed")
	return count, nil
}

// SyncPrices ingests price history for the tickers, fetching only the days
// past what is already stored. Returns the number of bars inserted.
func (o *Orchestrator) SyncPrices(ctx context.Context, tickers []string, years int) (int, error) {
	end := today()
	defaultStart := end.AddDate(0, 0, -years*365)

	count := 0
	var pending []contracts.PriceBar

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := o.prices.InsertBatch(ctx, pending); err != nil {
			return err
		}
		count += len(pending)
		pending = pending[:0]
		return nil
	}

	for _, ticker := range tickers {
		latest, err := o.prices.LatestDate(ctx, ticker)
		if err != nil {
			return count, fmt.Errorf("latest price date %s: %w", ticker, err)
		}

		start := defaultStart
		if latest != nil {
			start = latest.AddDate(0, 0, 1)
			if !start.Before(end) {
				continue // already up to date
			}
		}

		bars, err := o.stock.PriceHistory(ctx, ticker, start, end)
		if err != nil {
			return count, fmt.Errorf("price history %s: %w", ticker, err)
		}

		for _, bar := range bars {
			pending = append(pending, bar)
			if len(pending) >= priceBatchSize {
				if err := flush(); err != nil {
					return count, fmt.Errorf("insert prices %s: %w", ticker, err)
				}
			}
		}
	}

	if err := flush(); err != nil {
		return count, fmt.Errorf("insert prices: %w", err)
	}

	o.logger.WithField("inserted", count).Info("Price sync completed")
	return count, nil
}

// SyncBenchmark ingests benchmark index closes with the same incremental
// window as the per-ticker price sync. It is its own operation with its own
// schedule, outside the full ingestion run.
func (o *Orchestrator) SyncBenchmark(ctx context.Context, symbol string, years int) (int, error) {
	symbol = strings.ToUpper(symbol)
	end := today()
	start := end.AddDate(0, 0, -years*365)

	latest, err := o.benchmarks.LatestDate(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("latest benchmark date %s: %w", symbol, err)
	}
	if latest != nil {
		start = latest.AddDate(0, 0, 1)
		if !start.Before(end) {
			return 0, nil
		}
	}

	bars, err := o.stock.PriceHistory(ctx, symbol, start, end)
	if err != nil {
		return 0, fmt.Errorf("benchmark history %s: %w", symbol, err)
	}

	count := 0
	var pending []contracts.BenchmarkPrice

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := o.benchmarks.InsertBatch(ctx, pending); err != nil {
			return err
		}
		count += len(pending)
		pending = pending[:0]
		return nil
	}

	for _, bar := range bars {
		pending = append(pending, contracts.BenchmarkPrice{
			Symbol: symbol,
			Date:   bar.Date,
			Close:  bar.Close,
		})
		if len(pending) >= priceBatchSize {
			if err := flush(); err != nil {
				return count, fmt.Errorf("insert benchmark %s: %w", symbol, err)
			}
		}
	}

	if err := flush(); err != nil {
		return count, fmt.Errorf("insert benchmark %s: %w", symbol, err)
	}

	o.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"inserted": count,
	}).Info("Benchmark sync completed")
	return count, nil
}

// RefreshCurrentPrices updates each company's latest traded price where the
// provider has one. Returns the number of companies updated.
func (o *Orchestrator) RefreshCurrentPrices(ctx context.Context, tickers []string) (int, error) {
	count := 0
	for _, ticker := range tickers {
		price, err := o.stock.CurrentPrice(ctx, ticker)
		if err != nil {
			return count, fmt.Errorf("current price %s: %w", ticker, err)
		}
		if price == nil {
			continue
		}

		company, err := o.companies.Get(ctx, ticker)
		if err != nil {
			return count, fmt.Errorf("get company %s: %w", ticker, err)
		}
		if company == nil {
			continue
		}

		if err := o.companies.UpdateCurrentPrice(ctx, ticker, *price); err != nil {
			return count, fmt.Errorf("update current price %s: %w", ticker, err)
		}
		count++
	}

	o.logger.WithField("updated", count).Info("Current price refresh completed")
	return count, nil
}

// SyncRatings ingests ratings per ticker, skipping ones already stored and
// creating placeholder analysts for ids the store has never seen. Returns
// the number of ratings inserted.
func (o *Orchestrator) SyncRatings(ctx context.Context, tickers []string) (int, error) {
	count := 0
	var pending []contracts.Rating

	// Keys already queued this run. The store drops key conflicts on
	// insert, so without this a payload repeating a key would inflate
	// the count.
	seen := make(map[string]struct{})

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := o.ratingRepo.InsertBatch(ctx, pending); err != nil {
			return err
		}
		count += len(pending)
		pending = pending[:0]
		return nil
	}

	for _, ticker := range tickers {
		records, err := o.ratings.RatingsForCompany(ctx, ticker, time.Time{}, time.Time{})
		if err != nil {
			return count, fmt.Errorf("ratings for %s: %w", ticker, err)
		}

		for _, rec := range records {
			key := fmt.Sprintf("%s|%s|%s", rec.AnalystID, rec.Ticker, rec.Date.Format("2006-01-02"))
			if _, dup := seen[key]; dup {
				continue
			}

			exists, err := o.ratingRepo.Exists(ctx, rec.AnalystID, rec.Ticker, rec.Date)
			if err != nil {
				return count, fmt.Errorf("rating exists check: %w", err)
			}
			if exists {
				continue
			}
			seen[key] = struct{}{}

			if err := o.ensureAnalyst(ctx, rec.AnalystID); err != nil {
				return count, err
			}

			pending = append(pending, contracts.Rating{
				AnalystID:   rec.AnalystID,
				Ticker:      rec.Ticker,
				Date:        rec.Date,
				Category:    rec.Category,
				PriceTarget: rec.PriceTarget,
			})
			if len(pending) >= ratingBatchSize {
				if err := flush(); err != nil {
					return count, fmt.Errorf("insert ratings %s: %w", ticker, err)
				}
			}
		}
	}

	if err := flush(); err != nil {
		return count, fmt.Errorf("insert ratings: %w", err)
	}

	o.logger.WithField("inserted", count).Info("Rating sync completed")
	return count, nil
}

// ensureAnalyst creates a placeholder row for an analyst id the store has
// never seen, so ratings never dangle.
func (o *Orchestrator) ensureAnalyst(ctx context.Context, analystID string) error {
	existing, err := o.analysts.Get(ctx, analystID)
	if err != nil {
		return fmt.Errorf("get analyst %s: %w", analystID, err)
	}
	if existing != nil {
		return nil
	}

	_, err = o.analysts.Upsert(ctx, &contracts.Analyst{
		AnalystID: analystID,
		Name:      fmt.Sprintf("Unknown (%s)", analystID),
		Firm:      "Unknown",
	})
	if err != nil {
		return fmt.Errorf("create placeholder analyst %s: %w", analystID, err)
	}
	return nil
}

// SyncAnalysts upserts the provider's analyst list, replacing placeholder
// names when the source knows the firm. Counts only created rows.
func (o *Orchestrator) SyncAnalysts(ctx context.Context) (int, error) {
	records, err := o.ratings.Analysts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list analysts: %w", err)
	}

	count := 0
	for _, rec := range records {
		created, err := o.analysts.Upsert(ctx, &contracts.Analyst{
			AnalystID: rec.AnalystID,
			Name:      rec.Name,
			Firm:      rec.Firm,
		})
		if err != nil {
			return count, fmt.Errorf("upsert analyst %s: %w", rec.AnalystID, err)
		}
		if created {
			count++
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"analysts": len(records),
		"created":  count,
	}).Info("Analyst sync completed")
	return count, nil
}

// RunFullIngestion runs every sync stage in order. limitCompanies restricts
// the ticker set for smaller runs; zero means no limit.
func (o *Orchestrator) RunFullIngestion(ctx context.Context, priceYears, limitCompanies int) (*contracts.IngestionStats, error) {
	stats := &contracts.IngestionStats{}

	var err error
	if stats.Companies, err = o.SyncCompanies(ctx); err != nil {
		return stats, fmt.Errorf("company sync: %w", err)
	}

	tickers, err := o.companies.ListTickers(ctx)
	if err != nil {
		return stats, fmt.Errorf("list tickers: %w", err)
	}
	if limitCompanies > 0 && len(tickers) > limitCompanies {
		tickers = tickers[:limitCompanies]
	}

	if stats.Prices, err = o.SyncPrices(ctx, tickers, priceYears); err != nil {
		return stats, fmt.Errorf("price sync: %w", err)
	}
	if stats.CurrentPrices, err = o.RefreshCurrentPrices(ctx, tickers); err != nil {
		return stats, fmt.Errorf("current price refresh: %w", err)
	}
	if stats.Ratings, err = o.SyncRatings(ctx, tickers); err != nil {
		return stats, fmt.Errorf("rating sync: %w", err)
	}
	if stats.Analysts, err = o.SyncAnalysts(ctx); err != nil {
		return stats, fmt.Errorf("analyst sync: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"companies":      stats.Companies,
		"prices":         stats.Prices,
		"current_prices": stats.CurrentPrices,
		"ratings":        stats.Ratings,
		"analysts":       stats.Analysts,
	}).Info("Full ingestion completed")
	return stats, nil
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
