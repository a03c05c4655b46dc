package yahoo

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// ListUniverse returns the tradable universe with a tiered fallback so an
// outage of one listing source never empties the pipeline:
//  1. remote constituents CSV
//  2. HTML listing table scrape
//  3. hardcoded short list
func (p *Provider) ListUniverse(ctx context.Context) ([]contracts.CompanyRecord, error) {
	if companies := p.universeFromCSV(ctx); len(companies) > 0 {
		return companies, nil
	}
	if companies := p.universeFromHTML(ctx); len(companies) > 0 {
		return companies, nil
	}

	p.logger.Warn("All universe sources failed, using hardcoded fallback")
	return fallbackUniverse(), nil
}

// universeFromCSV loads the constituents CSV. Expected columns are
// Symbol, Security, GICS Sector, GICS Sub-Industry.
func (p *Provider) universeFromCSV(ctx context.Context) []contracts.CompanyRecord {
	body, err := p.fetchBody(ctx, p.cfg.ConstituentsCSVURL)
	if err != nil {
		p.logger.WithError(err).Warn("Universe CSV fetch failed")
		return nil
	}

	companies, err := parseConstituentsCSV(body)
	if err != nil {
		p.logger.WithError(err).Warn("Universe CSV parse failed")
		return nil
	}

	p.logger.WithField("count", len(companies)).Info("Loaded universe from CSV")
	return companies
}

func parseConstituentsCSV(body []byte) ([]contracts.CompanyRecord, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	// Resolve column positions from the header row.
	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	symCol, ok := cols["Symbol"]
	if !ok {
		return nil, nil
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var companies []contracts.CompanyRecord
	for _, row := range records[1:] {
		if symCol >= len(row) {
			continue
		}
		ticker := normalizeTicker(row[symCol])
		if ticker == "" {
			continue
		}
		companies = append(companies, contracts.CompanyRecord{
			Ticker:   ticker,
			Name:     field(row, "Security"),
			Sector:   field(row, "GICS Sector"),
			Industry: field(row, "GICS Sub-Industry"),
		})
	}
	return companies, nil
}

// universeFromHTML scrapes the first constituents table of an HTML listing
// page. Column order follows the common layout: symbol, security, sector,
// sub-industry.
func (p *Provider) universeFromHTML(ctx context.Context) []contracts.CompanyRecord {
	body, err := p.fetchBody(ctx, p.cfg.ConstituentsHTMLURL)
	if err != nil {
		p.logger.WithError(err).Warn("Universe HTML fetch failed")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		p.logger.WithError(err).Warn("Universe HTML parse failed")
		return nil
	}

	var companies []contracts.CompanyRecord
	doc.Find("table").First().Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		ticker := normalizeTicker(strings.TrimSpace(cells.Eq(0).Text()))
		if ticker == "" {
			return
		}
		c := contracts.CompanyRecord{
			Ticker: ticker,
			Name:   strings.TrimSpace(cells.Eq(1).Text()),
		}
		if cells.Length() > 2 {
			c.Sector = strings.TrimSpace(cells.Eq(2).Text())
		}
		if cells.Length() > 3 {
			c.Industry = strings.TrimSpace(cells.Eq(3).Text())
		}
		companies = append(companies, c)
	})

	if len(companies) > 0 {
		p.logger.WithField("count", len(companies)).Info("Loaded universe from HTML listing")
	}
	return companies
}

// normalizeTicker maps listing-style symbols (BRK.B) to the dash form the
// quote endpoints expect (BRK-B).
func normalizeTicker(symbol string) string {
	return strings.ReplaceAll(strings.TrimSpace(symbol), ".", "-")
}

func fallbackUniverse() []contracts.CompanyRecord {
	entries := []struct{ ticker, name, sector, industry string }{
		{"AAPL", "Apple Inc.", "Information Technology", "Technology Hardware"},
		{"MSFT", "Microsoft Corporation", "Information Technology", "Software"},
		{"GOOGL", "Alphabet Inc.", "Communication Services", "Interactive Media"},
		{"AMZN", "Amazon.com Inc.", "Consumer Discretionary", "Broadline Retail"},
		{"NVDA", "NVIDIA Corporation", "Information Technology", "Semiconductors"},
		{"META", "Meta Platforms Inc.", "Communication Services", "Interactive Media"},
		{"TSLA", "Tesla Inc.", "Consumer Discretionary", "Automobiles"},
		{"BRK-B", "Berkshire Hathaway Inc.", "Financials", "Multi-Sector Holdings"},
		{"UNH", "UnitedHealth Group Inc.", "Health Care", "Managed Health Care"},
		{"JNJ", "Johnson & Johnson", "Health Care", "Pharmaceuticals"},
		{"V", "Visa Inc.", "Financials", "Transaction Processing"},
		{"XOM", "Exxon Mobil Corporation", "Energy", "Oil & Gas"},
		{"JPM", "JPMorgan Chase & Co.", "Financials", "Diversified Banks"},
		{"WMT", "Walmart Inc.", "Consumer Staples", "Consumer Staples Merchandise"},
		{"MA", "Mastercard Incorporated", "Financials", "Transaction Processing"},
		{"PG", "Procter & Gamble Company", "Consumer Staples", "Household Products"},
		{"HD", "The Home Depot Inc.", "Consumer Discretionary", "Home Improvement"},
		{"CVX", "Chevron Corporation", "Energy", "Oil & Gas"},
		{"MRK", "Merck & Co. Inc.", "Health Care", "Pharmaceuticals"},
		{"LLY", "Eli Lilly and Company", "Health Care", "Pharmaceuticals"},
	}

	companies := make([]contracts.CompanyRecord, 0, len(entries))
	for _, e := range entries {
		companies = append(companies, contracts.CompanyRecord{
			Ticker: e.ticker, Name: e.name, Sector: e.sector, Industry: e.industry,
		})
	}
	return companies
}
