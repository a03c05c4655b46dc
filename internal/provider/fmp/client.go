// Package fmp implements the ratings provider capability over the Financial
// Modeling Prep upgrades-downgrades endpoint. All FMP calls live in this
// package.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/pkg/config"
	"github.com/ethanwoods/stockrank/pkg/httputil"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// Provider fetches analyst ratings from Financial Modeling Prep. Without an
// API key every query returns empty results, which lets the composite layer
// keep it wired unconditionally.
//
// Like the other ratings sources, per-ticker fetches accumulate on the
// instance so analyst and cross-ticker queries reflect prior fetches.
type Provider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string

	mu       sync.Mutex
	analysts map[string]contracts.AnalystRecord
	ratings  []contracts.RatingRecord
}

// NewProvider creates a Financial Modeling Prep provider.
func NewProvider(httpClient *httputil.Client, log *logger.Logger, cfg config.FMPConfig) *Provider {
	if cfg.APIKey == "" {
		log.Warn("FMP API key not set, provider will return empty results")
	}
	return &Provider{
		httpClient: httpClient,
		logger:     log,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		analysts:   make(map[string]contracts.AnalystRecord),
	}
}

// Name identifies this provider in logs and composite fallback chains.
func (p *Provider) Name() string {
	return "fmp"
}

// gradeChange mirrors one row of the upgrades-downgrades endpoint.
type gradeChange struct {
	PublishedDate  string   `json:"publishedDate"`
	GradingCompany string   `json:"gradingCompany"`
	NewGrade       string   `json:"newGrade"`
	PreviousGrade  string   `json:"previousGrade"`
	PriceTarget    *float64 `json:"priceTarget"`
}

// RatingsForCompany fetches grade changes for one ticker. A zero price
// target is treated as absent.
func (p *Provider) RatingsForCompany(ctx context.Context, ticker string, from, to time.Time) ([]contracts.RatingRecord, error) {
	if p.apiKey == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/upgrades-downgrades?symbol=%s&apikey=%s",
		p.baseURL, url.QueryEscape(ticker), url.QueryEscape(p.apiKey))

	resp, err := p.httpClient.Get(ctx, endpoint)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("FMP fetch failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"status": resp.StatusCode,
		}).Warn("FMP request rejected")
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil
	}

	var changes []gradeChange
	if err := json.Unmarshal(body, &changes); err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("FMP response parse failed")
		return nil, nil
	}

	var ratings []contracts.RatingRecord
	for _, ch := range changes {
		date, ok := parsePublishedDate(ch.PublishedDate)
		if !ok {
			continue
		}
		if !contracts.InRange(date, from, to) {
			continue
		}
		if ch.NewGrade == "" {
			continue
		}

		firm := ch.GradingCompany
		if firm == "" {
			firm = "Unknown"
		}
		analystID := contracts.DeriveAnalystID(firm)
		p.rememberAnalyst(contracts.AnalystRecord{
			AnalystID: analystID,
			Name:      fmt.Sprintf("Analyst at %s", firm),
			Firm:      firm,
		})

		target := ch.PriceTarget
		if target != nil && *target == 0 {
			target = nil
		}

		ratings = append(ratings, contracts.RatingRecord{
			AnalystID:   analystID,
			Ticker:      ticker,
			Date:        date,
			Category:    contracts.ParseRatingGrade(ch.NewGrade),
			PriceTarget: target,
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

// parsePublishedDate accepts the endpoint's timestamp form, keeping only the
// calendar day.
func parsePublishedDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	day := s
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		day = s[:i]
	}
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
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
