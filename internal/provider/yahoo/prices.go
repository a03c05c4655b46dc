package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// chartResponse mirrors the v8 chart endpoint envelope, reduced to the
// fields the pipeline reads.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// PriceHistory fetches daily bars for the closed interval [start, end].
// Fetch or parse failures degrade to an empty result so one bad ticker does
// not abort a full sync.
func (p *Provider) PriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.PriceBar, error) {
	body, err := p.fetchChart(ctx, ticker, start, end)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Price history fetch failed")
		return nil, nil
	}

	bars, err := parseChartBars(body, ticker)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Price history parse failed")
		return nil, nil
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(bars),
	}).Debug("Fetched price history")
	return bars, nil
}

// CurrentPrice returns the latest traded price, or nil when unavailable.
func (p *Provider) CurrentPrice(ctx context.Context, ticker string) (*float64, error) {
	now := time.Now().UTC()
	body, err := p.fetchChart(ctx, ticker, now.AddDate(0, 0, -7), now)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Current price fetch failed")
		return nil, nil
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}
	return resp.Chart.Result[0].Meta.RegularMarketPrice, nil
}

func (p *Provider) fetchChart(ctx context.Context, ticker string, start, end time.Time) ([]byte, error) {
	// The endpoint treats period2 as exclusive; push it one day past the
	// requested end so the closing bar is included.
	url := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d",
		p.cfg.ChartBaseURL, ticker, start.Unix(), end.AddDate(0, 0, 1).Unix())
	return p.fetchBody(ctx, url)
}

func parseChartBars(body []byte, ticker string) ([]contracts.PriceBar, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	at := func(vals []*float64, i int) (float64, bool) {
		if i >= len(vals) || vals[i] == nil {
			return 0, false
		}
		return *vals[i], true
	}

	var bars []contracts.PriceBar
	for i, ts := range result.Timestamp {
		// Rows with null quote fields are market holidays or gaps; skip them.
		open, ok := at(quote.Open, i)
		if !ok {
			continue
		}
		high, ok := at(quote.High, i)
		if !ok {
			continue
		}
		low, ok := at(quote.Low, i)
		if !ok {
			continue
		}
		closePrice, ok := at(quote.Close, i)
		if !ok {
			continue
		}

		adj := closePrice
		if v, ok := at(adjClose, i); ok {
			adj = v
		}

		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		day := time.Unix(ts, 0).UTC()
		bars = append(bars, contracts.PriceBar{
			Ticker:   ticker,
			Date:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			AdjClose: adj,
			Volume:   volume,
		})
	}
	return bars, nil
}
