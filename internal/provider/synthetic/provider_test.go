package synthetic

import (
	"context"
	"strings"
	"testing"
	"time"
)

var testTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "BRK-B",
	"UNH", "JNJ", "V", "XOM", "JPM", "WMT", "MA", "PG",
}

func generated(t *testing.T, seed int64) *Provider {
	t.Helper()
	p := NewProvider(10, 20, seed)
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.Generate(testTickers, from, to)
	return p
}

func TestGenerateIsDeterministic(t *testing.T) {
	ctx := context.Background()

	a := generated(t, 42)
	b := generated(t, 42)

	ratingsA, _ := a.AllRatings(ctx, time.Time{}, time.Time{})
	ratingsB, _ := b.AllRatings(ctx, time.Time{}, time.Time{})

	if len(ratingsA) == 0 {
		t.Fatal("Expected generated ratings")
	}
	if len(ratingsA) != len(ratingsB) {
		t.Fatalf("Same seed produced %d vs %d ratings", len(ratingsA), len(ratingsB))
	}
	for i := range ratingsA {
		ra, rb := ratingsA[i], ratingsB[i]
		if ra.AnalystID != rb.AnalystID || ra.Ticker != rb.Ticker ||
			!ra.Date.Equal(rb.Date) || ra.Category != rb.Category {
			t.Fatalf("Rating %d differs between identical seeds: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	ctx := context.Background()

	a := generated(t, 1)
	b := generated(t, 2)

	ratingsA, _ := a.AllRatings(ctx, time.Time{}, time.Time{})
	ratingsB, _ := b.AllRatings(ctx, time.Time{}, time.Time{})

	if len(ratingsA) == len(ratingsB) {
		same := true
		for i := range ratingsA {
			ra, rb := ratingsA[i], ratingsB[i]
			if ra.AnalystID != rb.AnalystID || ra.Ticker != rb.Ticker ||
				!ra.Date.Equal(rb.Date) || ra.Category != rb.Category {
				same = false
				break
			}
		}
		if same {
			t.Error("Different seeds produced identical data")
		}
	}
}

func TestGeneratedShape(t *testing.T) {
	ctx := context.Background()
	p := generated(t, 42)

	analysts, err := p.Analysts(ctx)
	if err != nil {
		t.Fatalf("Analysts() error = %v", err)
	}
	if len(analysts) != 10 {
		t.Fatalf("Expected 10 analysts, got %d", len(analysts))
	}
	for _, a := range analysts {
		if !strings.HasPrefix(a.AnalystID, "syn_") {
			t.Errorf("Unexpected analyst id %q", a.AnalystID)
		}
		if a.Firm == "" {
			t.Errorf("Analyst %s has no firm", a.AnalystID)
		}
	}

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ratings, _ := p.AllRatings(ctx, time.Time{}, time.Time{})
	known := map[string]bool{}
	for _, tk := range testTickers {
		known[tk] = true
	}
	for _, r := range ratings {
		if !known[r.Ticker] {
			t.Errorf("Rating references unknown ticker %q", r.Ticker)
		}
		if r.Date.Before(from) || r.Date.After(to) {
			t.Errorf("Rating date %v outside generation window", r.Date)
		}
		if r.PriceTarget == nil || *r.PriceTarget <= 0 {
			t.Errorf("Expected positive price target, got %v", r.PriceTarget)
		}
	}
}

func TestTargetMultiplierTracksDirection(t *testing.T) {
	ctx := context.Background()
	p := generated(t, 42)

	ratings, _ := p.AllRatings(ctx, time.Time{}, time.Time{})
	sawBullish := false
	for _, r := range ratings {
		if !r.Category.Bullish() {
			continue
		}
		sawBullish = true
		// Bullish targets sit above the 20 dollar base price floor.
		if *r.PriceTarget < 20*1.05 {
			t.Errorf("Bullish target %v below minimum multiplier band", *r.PriceTarget)
		}
	}
	if !sawBullish {
		t.Error("Expected at least one bullish rating in generated set")
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := generated(t, 42)

	before, _ := p.AllRatings(ctx, time.Time{}, time.Time{})
	p.Generate(testTickers, time.Time{}, time.Time{})
	after, _ := p.AllRatings(ctx, time.Time{}, time.Time{})

	if len(before) != len(after) {
		t.Errorf("Second Generate changed data: %d vs %d", len(before), len(after))
	}
}

func TestQueryFilters(t *testing.T) {
	ctx := context.Background()
	p := generated(t, 42)

	byTicker, _ := p.RatingsForCompany(ctx, "AAPL", time.Time{}, time.Time{})
	for _, r := range byTicker {
		if r.Ticker != "AAPL" {
			t.Errorf("RatingsForCompany leaked ticker %q", r.Ticker)
		}
	}

	byAnalyst, _ := p.RatingsForAnalyst(ctx, "syn_0000", time.Time{}, time.Time{})
	for _, r := range byAnalyst {
		if r.AnalystID != "syn_0000" {
			t.Errorf("RatingsForAnalyst leaked analyst %q", r.AnalystID)
		}
	}
	if len(byAnalyst) == 0 {
		t.Error("Expected ratings for first analyst")
	}
}
