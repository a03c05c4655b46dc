package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// quoteSummaryResponse mirrors the quoteSummary upgradeDowngradeHistory
// module envelope.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			UpgradeDowngradeHistory struct {
				History []gradeEvent `json:"history"`
			} `json:"upgradeDowngradeHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type gradeEvent struct {
	EpochGradeDate int64  `json:"epochGradeDate"`
	Firm           string `json:"firm"`
	ToGrade        string `json:"toGrade"`
	FromGrade      string `json:"fromGrade"`
	Action         string `json:"action"`
}

// RatingsForCompany fetches the grade history for one ticker, normalizing
// firms to analyst ids and grades to rating categories. Fetched ratings and
// their analysts are accumulated on the provider.
func (p *Provider) RatingsForCompany(ctx context.Context, ticker string, from, to time.Time) ([]contracts.RatingRecord, error) {
	events, err := p.fetchGradeHistory(ctx, ticker)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Ratings fetch failed")
		return nil, nil
	}

	var ratings []contracts.RatingRecord
	for _, ev := range events {
		if ev.ToGrade == "" || ev.EpochGradeDate <= 0 {
			continue
		}
		firm := ev.Firm
		if firm == "" {
			firm = "Unknown"
		}
		analystID := contracts.DeriveAnalystID(firm)

		day := time.Unix(ev.EpochGradeDate, 0).UTC()
		date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		if !contracts.InRange(date, from, to) {
			continue
		}

		p.rememberAnalyst(contracts.AnalystRecord{
			AnalystID: analystID,
			Name:      fmt.Sprintf("Analyst at %s", firm),
			Firm:      firm,
		})
		ratings = append(ratings, contracts.RatingRecord{
			AnalystID: analystID,
			Ticker:    ticker,
			Date:      date,
			Category:  contracts.ParseRatingGrade(ev.ToGrade),
		})
	}

	p.rememberRatings(ratings)
	return ratings, nil
}

// Analysts returns every analyst seen by previous rating fetches.
func (p *Provider) Analysts(ctx context.Context) ([]contracts.AnalystRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	analysts := make([]contracts.AnalystRecord, 0, len(p.analysts))
	for _, a := range p.analysts {
		analysts = append(analysts, a)
	}
	return analysts, nil
}

// RatingsForAnalyst filters accumulated ratings by analyst id.
func (p *Provider) RatingsForAnalyst(ctx context.Context, analystID string, from, to time.Time) ([]contracts.RatingRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []contracts.RatingRecord
	for _, r := range p.ratings {
		if r.AnalystID == analystID && contracts.InRange(r.Date, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// AllRatings returns every accumulated rating within the bounds.
func (p *Provider) AllRatings(ctx context.Context, from, to time.Time) ([]contracts.RatingRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []contracts.RatingRecord
	for _, r := range p.ratings {
		if contracts.InRange(r.Date, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (p *Provider) fetchGradeHistory(ctx context.Context, ticker string) ([]gradeEvent, error) {
	url := fmt.Sprintf("%s/%s?modules=upgradeDowngradeHistory", p.cfg.QuoteSummaryBaseURL, ticker)
	body, err := p.fetchBody(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp quoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil
	}
	return resp.QuoteSummary.Result[0].UpgradeDowngradeHistory.History, nil
}

func (p *Provider) rememberAnalyst(a contracts.AnalystRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.analysts[a.AnalystID]; !ok {
		p.analysts[a.AnalystID] = a
	}
}

func (p *Provider) rememberRatings(ratings []contracts.RatingRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ratings = append(p.ratings, ratings...)
}
