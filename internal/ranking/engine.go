// Package ranking backtests analyst ratings against realized prices and
// derives analyst confidence and company investment scores.
package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

const (
	// priceToleranceDays bounds how far from a target date a stored bar may
	// sit and still stand in for it.
	priceToleranceDays = 5

	// directionThreshold is the move a directional call must beat to count
	// as accurate; hold calls are accurate within twice this band.
	directionThreshold = 0.05

	// companyScoreWindowDays bounds which ratings feed a company's score.
	companyScoreWindowDays = 180

	// neutralConfidence stands in for analysts without a confidence score.
	neutralConfidence = 50.0
)

// Engine scores analysts by backtested accuracy and companies by
// confidence-weighted recent ratings.
type Engine struct {
	horizonDays int
	minRatings  int

	companies contracts.CompanyRepository
	prices    contracts.PriceRepository
	analysts  contracts.AnalystRepository
	ratings   contracts.RatingRepository

	logger *logger.Logger
}

// Stores bundles the repositories the engine reads and writes.
type Stores struct {
	Companies contracts.CompanyRepository
	Prices    contracts.PriceRepository
	Analysts  contracts.AnalystRepository
	Ratings   contracts.RatingRepository
}

// NewEngine creates a ranking engine. horizonDays is how long after a
// rating its outcome is measured; minRatings is the evaluated-rating floor
// below which no confidence score is assigned.
func NewEngine(horizonDays, minRatings int, stores Stores, log *logger.Logger) *Engine {
	return &Engine{
		horizonDays: horizonDays,
		minRatings:  minRatings,
		companies:   stores.Companies,
		prices:      stores.Prices,
		analysts:    stores.Analysts,
		ratings:     stores.Ratings,
		logger:      log.WithField("module", "ranking"),
	}
}

// priceNear returns the stored adjusted close nearest to target within the
// tolerance window. On equal distance the earlier bar wins.
func (e *Engine) priceNear(ctx context.Context, ticker string, target time.Time) (float64, bool, error) {
	from := target.AddDate(0, 0, -priceToleranceDays)
	to := target.AddDate(0, 0, priceToleranceDays)

	bars, err := e.prices.Range(ctx, ticker, from, to)
	if err != nil {
		return 0, false, err
	}
	if len(bars) == 0 {
		return 0, false, nil
	}

	best := bars[0]
	bestDist := absDuration(bars[0].Date.Sub(target))
	for _, bar := range bars[1:] {
		dist := absDuration(bar.Date.Sub(target))
		if dist < bestDist {
			best = bar
			bestDist = dist
		}
	}
	return best.AdjClose, true, nil
}

// wasAccurate reports whether a call's direction matched the realized
// return. Bullish needs a move above the threshold, bearish below the
// negative threshold, hold within twice the threshold either way.
func wasAccurate(category contracts.RatingCategory, returnPct float64) bool {
	switch {
	case category.Bullish():
		return returnPct > directionThreshold
	case category.Bearish():
		return returnPct < -directionThreshold
	default:
		return returnPct >= -2*directionThreshold && returnPct <= 2*directionThreshold
	}
}

// ScoreAnalysts backtests every analyst's seasoned ratings and updates
// confidence scores. Only ratings old enough for their horizon to have
// fully elapsed are evaluated. Returns the number of analysts updated.
func (e *Engine) ScoreAnalysts(ctx context.Context) (int, error) {
	analysts, err := e.analysts.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list analysts: %w", err)
	}

	cutoff := today().AddDate(0, 0, -e.horizonDays)
	updated := 0

	for _, analyst := range analysts {
		ratings, err := e.ratings.ListByAnalystBefore(ctx, analyst.AnalystID, cutoff)
		if err != nil {
			return updated, fmt.Errorf("list ratings for %s: %w", analyst.AnalystID, err)
		}
		if len(ratings) < e.minRatings {
			continue
		}

		total := 0
		accurate := 0
		for _, rating := range ratings {
			evalDate := rating.Date.AddDate(0, 0, e.horizonDays)

			startPrice, ok, err := e.priceNear(ctx, rating.Ticker, rating.Date)
			if err != nil {
				return updated, fmt.Errorf("price lookup %s: %w", rating.Ticker, err)
			}
			if !ok || startPrice == 0 {
				continue
			}
			endPrice, ok, err := e.priceNear(ctx, rating.Ticker, evalDate)
			if err != nil {
				return updated, fmt.Errorf("price lookup %s: %w", rating.Ticker, err)
			}
			if !ok {
				continue
			}

			returnPct := (endPrice - startPrice) / startPrice
			hit := wasAccurate(rating.Category, returnPct)

			if err := e.ratings.UpdateOutcome(ctx, rating.ID, returnPct, hit); err != nil {
				return updated, fmt.Errorf("update outcome %d: %w", rating.ID, err)
			}

			total++
			if hit {
				accurate++
			}
		}

		if total < e.minRatings {
			continue
		}

		confidence := float64(accurate) / float64(total) * 100
		if err := e.analysts.UpdateConfidence(ctx, analyst.AnalystID, &confidence, total, accurate); err != nil {
			return updated, fmt.Errorf("update confidence %s: %w", analyst.AnalystID, err)
		}
		updated++
	}

	e.logger.WithField("updated", updated).Info("Analyst scoring completed")
	return updated, nil
}

// ScoreCompanies derives each company's investment score from its recent
// ratings, weighted by analyst confidence. Companies with no qualifying
// ratings keep their prior scores. Returns the number of companies updated.
func (e *Engine) ScoreCompanies(ctx context.Context) (int, error) {
	tickers, err := e.companies.ListTickers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tickers: %w", err)
	}

	since := today().AddDate(0, 0, -companyScoreWindowDays)
	updated := 0

	for _, ticker := range tickers {
		ratings, err := e.ratings.ListByTickerSince(ctx, ticker, since)
		if err != nil {
			return updated, fmt.Errorf("list ratings for %s: %w", ticker, err)
		}
		if len(ratings) == 0 {
			continue
		}

		var weightedSum, weightTotal float64
		var targetSum, targetWeight float64

		for _, rating := range ratings {
			confidence := neutralConfidence
			analyst, err := e.analysts.Get(ctx, rating.AnalystID)
			if err != nil {
				return updated, fmt.Errorf("get analyst %s: %w", rating.AnalystID, err)
			}
			if analyst != nil && analyst.ConfidenceScore != nil {
				confidence = *analyst.ConfidenceScore
			}

			weight := confidence / 100
			weightedSum += rating.Category.Value() * weight
			weightTotal += weight

			if rating.PriceTarget != nil {
				targetSum += *rating.PriceTarget * weight
				targetWeight += weight
			}
		}

		if weightTotal == 0 {
			continue
		}

		avg := weightedSum / weightTotal // -2..+2
		score := (avg + 2) / 4 * 100

		var target *float64
		if targetWeight > 0 {
			t := targetSum / targetWeight
			target = &t
		} else if existing, err := e.companies.Get(ctx, ticker); err != nil {
			return updated, fmt.Errorf("get company %s: %w", ticker, err)
		} else if existing != nil {
			target = existing.TargetPrice
		}

		if err := e.companies.UpdateScores(ctx, ticker, &score, target); err != nil {
			return updated, fmt.Errorf("update scores %s: %w", ticker, err)
		}
		updated++
	}

	e.logger.WithField("updated", updated).Info("Company scoring completed")
	return updated, nil
}

// RunFullRanking scores analysts then companies, so company weights see the
// freshest confidence values.
func (e *Engine) RunFullRanking(ctx context.Context) (*contracts.RankingStats, error) {
	stats := &contracts.RankingStats{}

	var err error
	if stats.AnalystsRanked, err = e.ScoreAnalysts(ctx); err != nil {
		return stats, fmt.Errorf("analyst scoring: %w", err)
	}
	if stats.CompaniesRanked, err = e.ScoreCompanies(ctx); err != nil {
		return stats, fmt.Errorf("company scoring: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"analysts_ranked":  stats.AnalystsRanked,
		"companies_ranked": stats.CompaniesRanked,
	}).Info("Full ranking completed")
	return stats, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
