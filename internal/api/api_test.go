package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethanwoods/stockrank/internal/api/handlers"
	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/internal/ingest"
	"github.com/ethanwoods/stockrank/internal/jobtrack"
	"github.com/ethanwoods/stockrank/internal/ranking"
	"github.com/ethanwoods/stockrank/internal/store/memory"
	"github.com/ethanwoods/stockrank/pkg/config"
	"github.com/ethanwoods/stockrank/pkg/logger"
	"github.com/ethanwoods/stockrank/pkg/redis"
)

type stubStock struct{}

func (stubStock) Name() string { return "stub" }
func (stubStock) ListUniverse(ctx context.Context) ([]contracts.CompanyRecord, error) {
	return []contracts.CompanyRecord{{Ticker: "AAPL", Name: "Apple Inc."}}, nil
}
func (stubStock) PriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.PriceBar, error) {
	return []contracts.PriceBar{{Ticker: ticker, Date: start, Close: 100, AdjClose: 100}}, nil
}
func (stubStock) CurrentPrice(ctx context.Context, ticker string) (*float64, error) {
	p := 101.0
	return &p, nil
}

type stubRatings struct{}

func (stubRatings) Name() string { return "stub" }
func (stubRatings) Analysts(ctx context.Context) ([]contracts.AnalystRecord, error) {
	return nil, nil
}
func (stubRatings) RatingsForCompany(ctx context.Context, ticker string, from, to time.Time) ([]contracts.RatingRecord, error) {
	return nil, nil
}
func (stubRatings) RatingsForAnalyst(ctx context.Context, analystID string, from, to time.Time) ([]contracts.RatingRecord, error) {
	return nil, nil
}
func (stubRatings) AllRatings(ctx context.Context, from, to time.Time) ([]contracts.RatingRecord, error) {
	return nil, nil
}

type fixture struct {
	router    http.Handler
	companies contracts.CompanyRepository
	analysts  contracts.AnalystRepository
	jobs      contracts.JobRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.NewNop()
	cfg := &config.Config{
		Ingestion: config.IngestionConfig{PriceYears: 1, BenchmarkSymbol: "SPY"},
		Ranking:   config.RankingConfig{EvaluationHorizonDays: 90, MinRatingsForConfidence: 5},
	}

	companies := memory.NewCompanyRepository()
	prices := memory.NewPriceRepository()
	benchmarks := memory.NewBenchmarkRepository()
	analysts := memory.NewAnalystRepository()
	ratings := memory.NewRatingRepository()
	jobs := memory.NewJobRepository()

	orchestrator := ingest.NewOrchestrator(stubStock{}, stubRatings{}, ingest.Stores{
		Companies:  companies,
		Prices:     prices,
		Benchmarks: benchmarks,
		Analysts:   analysts,
		Ratings:    ratings,
	}, log)
	engine := ranking.NewEngine(cfg.Ranking.EvaluationHorizonDays, cfg.Ranking.MinRatingsForConfidence, ranking.Stores{
		Companies: companies,
		Prices:    prices,
		Analysts:  analysts,
		Ratings:   ratings,
	}, log)
	tracker := jobtrack.New(jobs, log)

	redisClient, err := redis.New(&config.Config{})
	if err != nil {
		t.Fatalf("redis.New() error = %v", err)
	}
	cache := redis.NewCache(redisClient, "stockrank")

	admin := handlers.NewAdminHandler(orchestrator, engine, tracker, cfg, log)
	rankingHandler := handlers.NewRankingHandler(companies, analysts, cache, log)

	return &fixture{
		router:    NewRouter(admin, rankingHandler, log),
		companies: companies,
		analysts:  analysts,
		jobs:      jobs,
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestIngestEndpoint(t *testing.T) {
	f := newFixture(t)

	payload := bytes.NewBufferString(`{"price_years": 1}`)
	req := httptest.NewRequest("POST", "/api/admin/ingest", payload)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stats contracts.IngestionStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if stats.Companies != 1 {
		t.Errorf("Expected 1 company ingested, got %d", stats.Companies)
	}

	// The run is recorded as a job.
	jobs, _ := f.jobs.List(context.Background(), 10)
	if len(jobs) != 1 || jobs[0].JobType != "full_ingestion" {
		t.Errorf("Expected tracked ingestion job, got %+v", jobs)
	}
	if jobs[0].Status != contracts.JobCompleted {
		t.Errorf("Expected completed job, got %s", jobs[0].Status)
	}
}

func TestRankEndpoint(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("POST", "/api/admin/rank", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var stats contracts.RankingStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
}

func TestJobsEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, _ := f.jobs.Create(ctx, "full_ingestion", time.Now().UTC())
	f.jobs.Finish(ctx, id, contracts.JobCompleted, time.Now().UTC(), "companies=10")

	req := httptest.NewRequest("GET", "/api/admin/jobs?limit=5", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var jobs []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 job, got %d", len(jobs))
	}
	if jobs[0]["job_type"] != "full_ingestion" {
		t.Errorf("Unexpected job type %v", jobs[0]["job_type"])
	}
}

func TestJobsEndpointBadLimit(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("GET", "/api/admin/jobs?limit=zero", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestCompaniesEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	score := 75.0
	f.companies.Upsert(ctx, &contracts.Company{Ticker: "AAPL", Name: "Apple Inc."})
	f.companies.Upsert(ctx, &contracts.Company{Ticker: "MSFT", Name: "Microsoft"})
	f.companies.UpdateScores(ctx, "MSFT", &score, nil)

	req := httptest.NewRequest("GET", "/api/companies", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var companies []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &companies); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("Expected 2 companies, got %d", len(companies))
	}
	// Scored companies come first.
	if companies[0]["ticker"] != "MSFT" {
		t.Errorf("Expected MSFT first, got %v", companies[0]["ticker"])
	}
}

func TestAnalystsEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conf := 83.33
	f.analysts.Upsert(ctx, &contracts.Analyst{AnalystID: "a1", Name: "Jane", Firm: "Acme"})
	f.analysts.UpdateConfidence(ctx, "a1", &conf, 6, 5)

	req := httptest.NewRequest("GET", "/api/analysts?limit=10", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var analysts []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &analysts); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(analysts) != 1 {
		t.Fatalf("Expected 1 analyst, got %d", len(analysts))
	}
	if analysts[0]["confidence_score"].(float64) != 83.33 {
		t.Errorf("Unexpected confidence %v", analysts[0]["confidence_score"])
	}
}
