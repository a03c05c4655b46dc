package contracts

import (
	"context"
	"time"
)

// CompanyRecord is the provider-normalized shape of a listed company.
type CompanyRecord struct {
	Ticker    string
	Name      string
	Sector    string
	Industry  string
	MarketCap float64
}

// PriceBar is one daily OHLC bar as produced by a stock provider.
type PriceBar struct {
	Ticker   string
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// AnalystRecord is the provider-normalized shape of an analyst.
type AnalystRecord struct {
	AnalystID string
	Name      string
	Firm      string
}

// RatingRecord is one analyst call as produced by a ratings provider.
// PriceTarget is nil when the source carries no target.
type RatingRecord struct {
	AnalystID   string
	Ticker      string
	Date        time.Time
	Category    RatingCategory
	PriceTarget *float64
}

// StockProvider is the stock-data capability a provider may implement.
// Implementations that cannot supply data return an empty result, never an
// error the caller has to branch on; errors are reserved for genuine faults
// the composite layer logs and skips.
type StockProvider interface {
	Name() string
	ListUniverse(ctx context.Context) ([]CompanyRecord, error)
	PriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]PriceBar, error)
	CurrentPrice(ctx context.Context, ticker string) (*float64, error)
}

// RatingsProvider is the analyst-ratings capability a provider may implement.
// A zero from/to time means the bound is open.
type RatingsProvider interface {
	Name() string
	Analysts(ctx context.Context) ([]AnalystRecord, error)
	RatingsForCompany(ctx context.Context, ticker string, from, to time.Time) ([]RatingRecord, error)
	RatingsForAnalyst(ctx context.Context, analystID string, from, to time.Time) ([]RatingRecord, error)
	AllRatings(ctx context.Context, from, to time.Time) ([]RatingRecord, error)
}

// InRange reports whether d falls inside the optional [from, to] bounds.
func InRange(d, from, to time.Time) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}
