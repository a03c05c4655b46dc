// Package yahoo implements the stock and ratings provider capabilities over
// the public Yahoo Finance JSON endpoints. All Yahoo Finance calls live in
// this package.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/pkg/config"
	"github.com/ethanwoods/stockrank/pkg/httputil"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// Provider fetches prices, company listings and analyst ratings from Yahoo
// Finance. It implements both contracts.StockProvider and
// contracts.RatingsProvider.
//
// Ratings fetched per ticker are accumulated in-memory so the analyst list
// and cross-ticker queries reflect everything fetched through this instance.
type Provider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.YahooConfig

	mu       sync.Mutex
	analysts map[string]contracts.AnalystRecord
	ratings  []contracts.RatingRecord
}

// NewProvider creates a Yahoo Finance provider.
func NewProvider(httpClient *httputil.Client, log *logger.Logger, cfg config.YahooConfig) *Provider {
	return &Provider{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
		analysts:   make(map[string]contracts.AnalystRecord),
	}
}

// Name identifies this provider in logs and composite fallback chains.
func (p *Provider) Name() string {
	return "yahoo"
}

// fetchBody performs a GET and returns the response body, treating any
// non-200 status as an error.
func (p *Provider) fetchBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := p.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
