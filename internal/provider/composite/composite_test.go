package composite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

type fakeStock struct {
	name      string
	companies []contracts.CompanyRecord
	bars      []contracts.PriceBar
	price     *float64
	err       error
}

func (f *fakeStock) Name() string { return f.name }

func (f *fakeStock) ListUniverse(ctx context.Context) ([]contracts.CompanyRecord, error) {
	return f.companies, f.err
}

func (f *fakeStock) PriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.PriceBar, error) {
	return f.bars, f.err
}

func (f *fakeStock) CurrentPrice(ctx context.Context, ticker string) (*float64, error) {
	return f.price, f.err
}

type fakeRatings struct {
	name     string
	analysts []contracts.AnalystRecord
	ratings  []contracts.RatingRecord
	err      error
}

func (f *fakeRatings) Name() string { return f.name }

func (f *fakeRatings) Analysts(ctx context.Context) ([]contracts.AnalystRecord, error) {
	return f.analysts, f.err
}

func (f *fakeRatings) RatingsForCompany(ctx context.Context, ticker string, from, to time.Time) ([]contracts.RatingRecord, error) {
	return f.ratings, f.err
}

func (f *fakeRatings) RatingsForAnalyst(ctx context.Context, analystID string, from, to time.Time) ([]contracts.RatingRecord, error) {
	return f.ratings, f.err
}

func (f *fakeRatings) AllRatings(ctx context.Context, from, to time.Time) ([]contracts.RatingRecord, error) {
	return f.ratings, f.err
}

func TestStockFallbackOrder(t *testing.T) {
	price := 100.0
	broken := &fakeStock{name: "broken", err: errors.New("down")}
	empty := &fakeStock{name: "empty"}
	good := &fakeStock{
		name:      "good",
		companies: []contracts.CompanyRecord{{Ticker: "AAPL"}},
		bars:      []contracts.PriceBar{{Ticker: "AAPL"}},
		price:     &price,
	}

	p := New([]contracts.StockProvider{broken, empty, good}, nil, true, logger.NewNop())
	ctx := context.Background()

	companies, err := p.ListUniverse(ctx)
	if err != nil {
		t.Fatalf("ListUniverse() error = %v", err)
	}
	if len(companies) != 1 {
		t.Errorf("Expected fallback to third provider, got %d companies", len(companies))
	}

	bars, err := p.PriceHistory(ctx, "AAPL", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("PriceHistory() error = %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("Expected 1 bar from fallback, got %d", len(bars))
	}

	got, err := p.CurrentPrice(ctx, "AAPL")
	if err != nil {
		t.Fatalf("CurrentPrice() error = %v", err)
	}
	if got == nil || *got != 100.0 {
		t.Errorf("Expected price 100, got %v", got)
	}
}

func TestAllStockProvidersFail(t *testing.T) {
	p := New([]contracts.StockProvider{
		&fakeStock{name: "a", err: errors.New("down")},
		&fakeStock{name: "b"},
	}, nil, true, logger.NewNop())

	companies, err := p.ListUniverse(context.Background())
	if err != nil {
		t.Fatalf("ListUniverse() error = %v", err)
	}
	if companies != nil {
		t.Errorf("Expected nil universe, got %v", companies)
	}
}

func TestAggregateRatingsUnion(t *testing.T) {
	a := &fakeRatings{
		name:     "a",
		analysts: []contracts.AnalystRecord{{AnalystID: "x", Firm: "Old Firm"}},
		ratings:  []contracts.RatingRecord{{AnalystID: "x", Ticker: "AAPL"}},
	}
	b := &fakeRatings{
		name:     "b",
		analysts: []contracts.AnalystRecord{{AnalystID: "x", Firm: "New Firm"}, {AnalystID: "y"}},
		ratings:  []contracts.RatingRecord{{AnalystID: "y", Ticker: "AAPL"}},
	}
	broken := &fakeRatings{name: "broken", err: errors.New("down")}

	p := New(nil, []contracts.RatingsProvider{a, broken, b}, true, logger.NewNop())
	ctx := context.Background()

	analysts, err := p.Analysts(ctx)
	if err != nil {
		t.Fatalf("Analysts() error = %v", err)
	}
	if len(analysts) != 2 {
		t.Fatalf("Expected 2 deduped analysts, got %d", len(analysts))
	}
	// Later providers overwrite duplicates.
	if analysts[0].AnalystID != "x" || analysts[0].Firm != "New Firm" {
		t.Errorf("Expected last writer to win for x, got %+v", analysts[0])
	}

	ratings, err := p.AllRatings(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AllRatings() error = %v", err)
	}
	if len(ratings) != 2 {
		t.Errorf("Expected union of 2 ratings, got %d", len(ratings))
	}
}

func TestFirstSuccessRatings(t *testing.T) {
	empty := &fakeRatings{name: "empty"}
	first := &fakeRatings{
		name:    "first",
		ratings: []contracts.RatingRecord{{AnalystID: "x", Ticker: "AAPL"}},
	}
	second := &fakeRatings{
		name:    "second",
		ratings: []contracts.RatingRecord{{AnalystID: "y", Ticker: "AAPL"}, {AnalystID: "z", Ticker: "AAPL"}},
	}

	p := New(nil, []contracts.RatingsProvider{empty, first, second}, false, logger.NewNop())

	ratings, err := p.RatingsForCompany(context.Background(), "AAPL", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("RatingsForCompany() error = %v", err)
	}
	if len(ratings) != 1 || ratings[0].AnalystID != "x" {
		t.Errorf("Expected first non-empty provider to win, got %+v", ratings)
	}
}
