package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/internal/ingest"
	"github.com/ethanwoods/stockrank/internal/jobtrack"
	"github.com/ethanwoods/stockrank/internal/provider/composite"
	"github.com/ethanwoods/stockrank/internal/provider/fmp"
	"github.com/ethanwoods/stockrank/internal/provider/synthetic"
	"github.com/ethanwoods/stockrank/internal/provider/yahoo"
	"github.com/ethanwoods/stockrank/internal/ranking"
	"github.com/ethanwoods/stockrank/internal/store/postgres"
	"github.com/ethanwoods/stockrank/pkg/config"
	"github.com/ethanwoods/stockrank/pkg/database"
	"github.com/ethanwoods/stockrank/pkg/httputil"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// app bundles the wired pipeline dependencies shared by the CLI commands.
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB

	companies  contracts.CompanyRepository
	analysts   contracts.AnalystRepository
	jobs       contracts.JobRepository
	stock      contracts.StockProvider
	ratings    contracts.RatingsProvider
	orch       *ingest.Orchestrator
	engine     *ranking.Engine
	tracker    *jobtrack.Tracker
}

// initApp loads config, connects to the database, ensures the schema and
// wires the providers, repositories and pipeline components.
func initApp(syntheticRatings bool, syntheticSeed int64) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if rankHorizon > 0 {
		cfg.Ranking.EvaluationHorizonDays = rankHorizon
	}
	if rankMinRatings > 0 {
		cfg.Ranking.MinRatingsForConfidence = rankMinRatings
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database and ensure schema
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	// 4. Create HTTP client with the vendor rate limit
	httpClient := httputil.New(log).WithRateLimit(cfg.Ingestion.RequestsPerSec, 1)

	// 5. Create providers
	yahooProvider := yahoo.NewProvider(httpClient, log, cfg.Yahoo)
	fmpProvider := fmp.NewProvider(httpClient, log, cfg.FMP)

	stock := contracts.StockProvider(composite.New(
		[]contracts.StockProvider{yahooProvider},
		nil, true, log,
	))

	var ratingsProvider contracts.RatingsProvider
	if syntheticRatings {
		syn := synthetic.NewProvider(50, 40, syntheticSeed)
		tickers, err := universeTickers(ctx, stock)
		if err != nil {
			db.Close()
			return nil, err
		}
		syn.Generate(tickers, time.Time{}, time.Time{})
		ratingsProvider = syn
	} else {
		ratingsProvider = composite.New(nil,
			[]contracts.RatingsProvider{yahooProvider, fmpProvider},
			true, log,
		)
	}

	// 6. Create repositories
	companies := postgres.NewCompanyRepository(db.Pool)
	prices := postgres.NewPriceRepository(db.Pool)
	benchmarks := postgres.NewBenchmarkRepository(db.Pool)
	analysts := postgres.NewAnalystRepository(db.Pool)
	ratings := postgres.NewRatingRepository(db.Pool)
	jobs := postgres.NewJobRepository(db.Pool)

	// 7. Create pipeline components
	orch := ingest.NewOrchestrator(stock, ratingsProvider, ingest.Stores{
		Companies:  companies,
		Prices:     prices,
		Benchmarks: benchmarks,
		Analysts:   analysts,
		Ratings:    ratings,
	}, log)

	engine := ranking.NewEngine(
		cfg.Ranking.EvaluationHorizonDays,
		cfg.Ranking.MinRatingsForConfidence,
		ranking.Stores{
			Companies: companies,
			Prices:    prices,
			Analysts:  analysts,
			Ratings:   ratings,
		}, log)

	tracker := jobtrack.New(jobs, log)

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		companies: companies,
		analysts:  analysts,
		jobs:      jobs,
		stock:     stock,
		ratings:   ratingsProvider,
		orch:      orch,
		engine:    engine,
		tracker:   tracker,
	}, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func universeTickers(ctx context.Context, stock contracts.StockProvider) ([]string, error) {
	records, err := stock.ListUniverse(ctx)
	if err != nil {
		return nil, fmt.Errorf("list universe: %w", err)
	}
	tickers := make([]string, 0, len(records))
	for _, rec := range records {
		tickers = append(tickers, rec.Ticker)
	}
	return tickers, nil
}
