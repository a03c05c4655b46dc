package contracts

import (
	"context"
	"time"
)

// Lookup methods return (nil, nil) when no row exists; errors are reserved
// for store faults, which abort the calling pipeline stage.

// CompanyRepository manages company rows.
type CompanyRepository interface {
	Get(ctx context.Context, ticker string) (*Company, error)
	ListTickers(ctx context.Context) ([]string, error)
	// Upsert inserts or overwrites descriptive fields, reporting whether a
	// new row was created.
	Upsert(ctx context.Context, company *Company) (created bool, err error)
	UpdateCurrentPrice(ctx context.Context, ticker string, price float64) error
	UpdateScores(ctx context.Context, ticker string, investmentScore, targetPrice *float64) error
	// ListRanked returns companies ordered by investment score descending,
	// scored companies first.
	ListRanked(ctx context.Context, limit int) ([]Company, error)
}

// PriceRepository manages daily price bars, unique per (ticker, date).
type PriceRepository interface {
	// LatestDate returns the most recent stored bar date for a ticker, or
	// nil when none is stored.
	LatestDate(ctx context.Context, ticker string) (*time.Time, error)
	InsertBatch(ctx context.Context, bars []PriceBar) error
	Range(ctx context.Context, ticker string, from, to time.Time) ([]PriceBar, error)
}

// BenchmarkRepository manages benchmark index closes, unique per
// (symbol, date) and separate from per-company prices.
type BenchmarkRepository interface {
	LatestDate(ctx context.Context, symbol string) (*time.Time, error)
	InsertBatch(ctx context.Context, prices []BenchmarkPrice) error
	Range(ctx context.Context, symbol string, from, to time.Time) ([]BenchmarkPrice, error)
}

// AnalystRepository manages analyst rows.
type AnalystRepository interface {
	Get(ctx context.Context, analystID string) (*Analyst, error)
	List(ctx context.Context) ([]Analyst, error)
	Upsert(ctx context.Context, analyst *Analyst) (created bool, err error)
	UpdateConfidence(ctx context.Context, analystID string, score *float64, total, accurate int) error
	// ListRanked returns analysts ordered by confidence score descending,
	// scored analysts first.
	ListRanked(ctx context.Context, limit int) ([]Analyst, error)
}

// RatingRepository manages analyst ratings, unique per
// (analyst id, ticker, date).
type RatingRepository interface {
	Exists(ctx context.Context, analystID, ticker string, date time.Time) (bool, error)
	InsertBatch(ctx context.Context, ratings []Rating) error
	ListByAnalystBefore(ctx context.Context, analystID string, cutoff time.Time) ([]Rating, error)
	ListByTickerSince(ctx context.Context, ticker string, since time.Time) ([]Rating, error)
	// UpdateOutcome persists the backtested result on a rating. This is the
	// only mutation ratings see after creation.
	UpdateOutcome(ctx context.Context, id int64, actualReturn float64, wasAccurate bool) error
}

// JobRepository records pipeline runs for the status surface.
type JobRepository interface {
	Create(ctx context.Context, jobType string, start time.Time) (int64, error)
	Finish(ctx context.Context, id int64, status JobStatus, end time.Time, detail string) error
	List(ctx context.Context, limit int) ([]JobRecord, error)
}
