package contracts

import "time"

// Company is a stored company row. Descriptive fields are overwritten by
// ingestion; InvestmentScore and TargetPrice are mutated only by the ranking
// engine and stay nil until a company has qualifying ratings.
type Company struct {
	Ticker          string
	Name            string
	Sector          string
	Industry        string
	MarketCap       float64
	CurrentPrice    float64
	InvestmentScore *float64
	TargetPrice     *float64
}

// BenchmarkPrice is one stored close for a benchmark index. Append-only,
// unique per (symbol, date).
type BenchmarkPrice struct {
	Symbol string
	Date   time.Time
	Close  float64
}

// Analyst is a stored analyst row. ConfidenceScore stays nil until the
// analyst has enough evaluated history; TotalRatings and AccurateRatings
// count evaluated ratings, not raw ones.
type Analyst struct {
	AnalystID       string
	Name            string
	Firm            string
	ConfidenceScore *float64
	TotalRatings    int
	AccurateRatings int
}

// Rating is a stored analyst rating, unique per (analyst id, ticker, date).
// WasAccurate and ActualReturn stay nil until the rating is backtested; the
// ranking engine is the only writer after creation.
type Rating struct {
	ID           int64
	AnalystID    string
	Ticker       string
	Date         time.Time
	Category     RatingCategory
	PriceTarget  *float64
	WasAccurate  *bool
	ActualReturn *float64
}

// JobStatus is the terminal (or in-flight) state of a tracked pipeline run.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobRecord tracks one pipeline invocation for observability.
type JobRecord struct {
	ID        int64
	JobType   string
	Status    JobStatus
	StartTime time.Time
	EndTime   *time.Time
	Detail    string
}
