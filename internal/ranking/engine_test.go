package ranking

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/internal/store/memory"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

func newStores() Stores {
	return Stores{
		Companies: memory.NewCompanyRepository(),
		Prices:    memory.NewPriceRepository(),
		Analysts:  memory.NewAnalystRepository(),
		Ratings:   memory.NewRatingRepository(),
	}
}

func newEngine(stores Stores) *Engine {
	return NewEngine(90, 5, stores, logger.NewNop())
}

func day(offset int) time.Time {
	now := time.Now().UTC()
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, offset)
}

func TestWasAccurate(t *testing.T) {
	tests := []struct {
		name      string
		category  contracts.RatingCategory
		returnPct float64
		want      bool
	}{
		{"buy with strong gain", contracts.RatingBuy, 0.08, true},
		{"buy with weak gain", contracts.RatingBuy, 0.02, false},
		{"buy exactly at threshold", contracts.RatingBuy, 0.05, false},
		{"strong buy with gain", contracts.RatingStrongBuy, 0.12, true},
		{"sell with drop", contracts.RatingSell, -0.08, true},
		{"sell with gain", contracts.RatingSell, 0.03, false},
		{"strong sell exactly at threshold", contracts.RatingStrongSell, -0.05, false},
		{"hold with small move", contracts.RatingHold, 0.03, true},
		{"hold with small drop", contracts.RatingHold, -0.09, true},
		{"hold at band edge", contracts.RatingHold, 0.10, true},
		{"hold with large move", contracts.RatingHold, 0.15, false},
		{"hold with large drop", contracts.RatingHold, -0.12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wasAccurate(tt.category, tt.returnPct); got != tt.want {
				t.Errorf("wasAccurate(%s, %v) = %v, want %v", tt.category, tt.returnPct, got, tt.want)
			}
		})
	}
}

func TestPriceNearToleranceAndTieBreak(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	target := day(-100)
	stores.Prices.InsertBatch(ctx, []contracts.PriceBar{
		{Ticker: "AAPL", Date: target.AddDate(0, 0, -2), AdjClose: 98},
		{Ticker: "AAPL", Date: target.AddDate(0, 0, 2), AdjClose: 102},
		{Ticker: "AAPL", Date: target.AddDate(0, 0, 4), AdjClose: 104},
	})

	// Equal distance either side: the earlier bar wins.
	price, ok, err := e.priceNear(ctx, "AAPL", target)
	if err != nil {
		t.Fatalf("priceNear() error = %v", err)
	}
	if !ok || price != 98 {
		t.Errorf("Expected earlier bar (98) on tie, got %v ok=%v", price, ok)
	}

	// Nothing within tolerance.
	_, ok, err = e.priceNear(ctx, "AAPL", target.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("priceNear() error = %v", err)
	}
	if ok {
		t.Error("Expected no price outside tolerance window")
	}
}

// seedOutcome stores one rating plus the two bars that realize the given
// return over the evaluation horizon.
func seedOutcome(ctx context.Context, stores Stores, analystID, ticker string, ratingDay time.Time, category contracts.RatingCategory, startPrice, endPrice float64) {
	stores.Prices.InsertBatch(ctx, []contracts.PriceBar{
		{Ticker: ticker, Date: ratingDay, AdjClose: startPrice, Close: startPrice},
		{Ticker: ticker, Date: ratingDay.AddDate(0, 0, 90), AdjClose: endPrice, Close: endPrice},
	})
	stores.Ratings.InsertBatch(ctx, []contracts.Rating{
		{AnalystID: analystID, Ticker: ticker, Date: ratingDay, Category: category},
	})
}

func TestScoreAnalysts(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	stores.Analysts.Upsert(ctx, &contracts.Analyst{AnalystID: "a1", Name: "Jane", Firm: "Acme"})

	// Six seasoned ratings on distinct tickers, five of them accurate.
	base := day(-400)
	seedOutcome(ctx, stores, "a1", "T1", base, contracts.RatingBuy, 100, 108)        // +8% accurate
	seedOutcome(ctx, stores, "a1", "T2", base, contracts.RatingBuy, 100, 102)        // +2% miss
	seedOutcome(ctx, stores, "a1", "T3", base, contracts.RatingHold, 100, 103)       // +3% accurate
	seedOutcome(ctx, stores, "a1", "T4", base, contracts.RatingSell, 100, 90)        // -10% accurate
	seedOutcome(ctx, stores, "a1", "T5", base, contracts.RatingStrongBuy, 100, 120)  // +20% accurate
	seedOutcome(ctx, stores, "a1", "T6", base, contracts.RatingStrongSell, 100, 80)  // -20% accurate

	updated, err := e.ScoreAnalysts(ctx)
	if err != nil {
		t.Fatalf("ScoreAnalysts() error = %v", err)
	}
	if updated != 1 {
		t.Fatalf("Expected 1 analyst updated, got %d", updated)
	}

	a, _ := stores.Analysts.Get(ctx, "a1")
	if a.ConfidenceScore == nil {
		t.Fatal("Expected confidence score set")
	}
	want := 5.0 / 6.0 * 100
	if math.Abs(*a.ConfidenceScore-want) > 0.01 {
		t.Errorf("Expected confidence %.2f, got %.2f", want, *a.ConfidenceScore)
	}
	if a.TotalRatings != 6 || a.AccurateRatings != 5 {
		t.Errorf("Expected 6 evaluated / 5 accurate, got %d/%d", a.TotalRatings, a.AccurateRatings)
	}

	// Outcomes are persisted on the ratings.
	ratings, _ := stores.Ratings.ListByAnalystBefore(ctx, "a1", day(0))
	for _, r := range ratings {
		if r.WasAccurate == nil || r.ActualReturn == nil {
			t.Errorf("Rating %s/%s not evaluated", r.Ticker, r.Date.Format("2006-01-02"))
		}
	}
}

func TestScoreAnalystsBelowMinimum(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	stores.Analysts.Upsert(ctx, &contracts.Analyst{AnalystID: "a1"})
	base := day(-400)
	for i, ticker := range []string{"T1", "T2", "T3", "T4"} {
		seedOutcome(ctx, stores, "a1", ticker, base.AddDate(0, 0, i), contracts.RatingBuy, 100, 110)
	}

	updated, err := e.ScoreAnalysts(ctx)
	if err != nil {
		t.Fatalf("ScoreAnalysts() error = %v", err)
	}
	if updated != 0 {
		t.Errorf("Expected no update below the ratings floor, got %d", updated)
	}

	a, _ := stores.Analysts.Get(ctx, "a1")
	if a.ConfidenceScore != nil {
		t.Errorf("Expected nil confidence, got %v", *a.ConfidenceScore)
	}
}

func TestScoreAnalystsSkipsRecentRatings(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	stores.Analysts.Upsert(ctx, &contracts.Analyst{AnalystID: "a1"})

	// Five seasoned plus one too recent to evaluate.
	base := day(-400)
	for i, ticker := range []string{"T1", "T2", "T3", "T4", "T5"} {
		seedOutcome(ctx, stores, "a1", ticker, base.AddDate(0, 0, i), contracts.RatingBuy, 100, 110)
	}
	stores.Ratings.InsertBatch(ctx, []contracts.Rating{
		{AnalystID: "a1", Ticker: "T9", Date: day(-10), Category: contracts.RatingBuy},
	})

	updated, err := e.ScoreAnalysts(ctx)
	if err != nil {
		t.Fatalf("ScoreAnalysts() error = %v", err)
	}
	if updated != 1 {
		t.Fatalf("Expected 1 analyst updated, got %d", updated)
	}

	a, _ := stores.Analysts.Get(ctx, "a1")
	if a.TotalRatings != 5 {
		t.Errorf("Expected 5 evaluated ratings (recent one excluded), got %d", a.TotalRatings)
	}
	if *a.ConfidenceScore != 100 {
		t.Errorf("Expected confidence 100, got %v", *a.ConfidenceScore)
	}
}

func TestScoreAnalystsSkipsMissingPrices(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	stores.Analysts.Upsert(ctx, &contracts.Analyst{AnalystID: "a1"})
	base := day(-400)
	for i, ticker := range []string{"T1", "T2", "T3", "T4", "T5"} {
		seedOutcome(ctx, stores, "a1", ticker, base.AddDate(0, 0, i), contracts.RatingBuy, 100, 110)
	}
	// A rating with no price history at all cannot be evaluated.
	stores.Ratings.InsertBatch(ctx, []contracts.Rating{
		{AnalystID: "a1", Ticker: "GHOST", Date: base, Category: contracts.RatingBuy},
	})

	if _, err := e.ScoreAnalysts(ctx); err != nil {
		t.Fatalf("ScoreAnalysts() error = %v", err)
	}

	a, _ := stores.Analysts.Get(ctx, "a1")
	if a.TotalRatings != 5 {
		t.Errorf("Expected unevaluable rating excluded from counts, got %d", a.TotalRatings)
	}
}

func TestScoreCompaniesWeightsByConfidence(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	stores.Companies.Upsert(ctx, &contracts.Company{Ticker: "ACME"})

	// A highly trusted bull and an unscored (neutral prior) bear.
	high := 90.0
	stores.Analysts.Upsert(ctx, &contracts.Analyst{AnalystID: "bull", ConfidenceScore: &high})
	stores.Analysts.Upsert(ctx, &contracts.Analyst{AnalystID: "bear"})

	t1 := 200.0
	stores.Ratings.InsertBatch(ctx, []contracts.Rating{
		{AnalystID: "bull", Ticker: "ACME", Date: day(-30), Category: contracts.RatingBuy, PriceTarget: &t1},
		{AnalystID: "bear", Ticker: "ACME", Date: day(-20), Category: contracts.RatingSell},
	})

	updated, err := e.ScoreCompanies(ctx)
	if err != nil {
		t.Fatalf("ScoreCompanies() error = %v", err)
	}
	if updated != 1 {
		t.Fatalf("Expected 1 company updated, got %d", updated)
	}

	c, _ := stores.Companies.Get(ctx, "ACME")
	if c.InvestmentScore == nil {
		t.Fatal("Expected investment score set")
	}

	// weighted avg = (1*0.9 - 1*0.5) / 1.4, normalized onto 0..100.
	wantAvg := (1*0.9 - 1*0.5) / 1.4
	want := (wantAvg + 2) / 4 * 100
	if math.Abs(*c.InvestmentScore-want) > 0.01 {
		t.Errorf("Expected score %.2f, got %.2f", want, *c.InvestmentScore)
	}
	if want <= 50 {
		t.Errorf("High-confidence bull should pull score above neutral, got %.2f", want)
	}

	// Target price comes only from ratings that carry one.
	if c.TargetPrice == nil || *c.TargetPrice != 200.0 {
		t.Errorf("Expected target 200, got %v", c.TargetPrice)
	}
}

func TestScoreCompaniesBounds(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	stores.Companies.Upsert(ctx, &contracts.Company{Ticker: "UP"})
	stores.Companies.Upsert(ctx, &contracts.Company{Ticker: "DOWN"})
	stores.Ratings.InsertBatch(ctx, []contracts.Rating{
		{AnalystID: "a", Ticker: "UP", Date: day(-10), Category: contracts.RatingStrongBuy},
		{AnalystID: "a", Ticker: "DOWN", Date: day(-10), Category: contracts.RatingStrongSell},
	})

	if _, err := e.ScoreCompanies(ctx); err != nil {
		t.Fatalf("ScoreCompanies() error = %v", err)
	}

	up, _ := stores.Companies.Get(ctx, "UP")
	down, _ := stores.Companies.Get(ctx, "DOWN")
	if *up.InvestmentScore != 100 {
		t.Errorf("All strong buy should score 100, got %v", *up.InvestmentScore)
	}
	if *down.InvestmentScore != 0 {
		t.Errorf("All strong sell should score 0, got %v", *down.InvestmentScore)
	}
}

func TestScoreCompaniesIgnoresStaleRatings(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	stores.Companies.Upsert(ctx, &contracts.Company{Ticker: "ACME"})
	stores.Ratings.InsertBatch(ctx, []contracts.Rating{
		{AnalystID: "a", Ticker: "ACME", Date: day(-200), Category: contracts.RatingStrongBuy},
	})

	updated, err := e.ScoreCompanies(ctx)
	if err != nil {
		t.Fatalf("ScoreCompanies() error = %v", err)
	}
	if updated != 0 {
		t.Errorf("Expected no update from stale ratings, got %d", updated)
	}

	c, _ := stores.Companies.Get(ctx, "ACME")
	if c.InvestmentScore != nil {
		t.Errorf("Expected prior (nil) score kept, got %v", *c.InvestmentScore)
	}
}

func TestRunFullRanking(t *testing.T) {
	stores := newStores()
	e := newEngine(stores)
	ctx := context.Background()

	stores.Companies.Upsert(ctx, &contracts.Company{Ticker: "ACME"})
	stores.Analysts.Upsert(ctx, &contracts.Analyst{AnalystID: "a1"})

	base := day(-400)
	for i := 0; i < 5; i++ {
		seedOutcome(ctx, stores, "a1", "ACME", base.AddDate(0, 0, i*10), contracts.RatingBuy, 100, 110)
	}
	stores.Ratings.InsertBatch(ctx, []contracts.Rating{
		{AnalystID: "a1", Ticker: "ACME", Date: day(-30), Category: contracts.RatingBuy},
	})

	stats, err := e.RunFullRanking(ctx)
	if err != nil {
		t.Fatalf("RunFullRanking() error = %v", err)
	}
	if stats.AnalystsRanked != 1 {
		t.Errorf("Expected 1 analyst ranked, got %d", stats.AnalystsRanked)
	}
	if stats.CompaniesRanked != 1 {
		t.Errorf("Expected 1 company ranked, got %d", stats.CompaniesRanked)
	}

	// Company weights use the fresh confidence (100), so the buy call
	// scores above the neutral-prior value.
	c, _ := stores.Companies.Get(ctx, "ACME")
	want := (1.0 + 2) / 4 * 100 // single buy at weight 1.0
	if math.Abs(*c.InvestmentScore-want) > 0.01 {
		t.Errorf("Expected score %.2f, got %.2f", want, *c.InvestmentScore)
	}
}
