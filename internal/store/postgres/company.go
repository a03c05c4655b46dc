// Package postgres implements the repository contracts over pgx. One
// repository per entity, raw SQL, ON CONFLICT upserts; batch inserts go
// through pgx.Batch so one flush is one round trip.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// CompanyRepository implements contracts.CompanyRepository.
type CompanyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Get retrieves a company by ticker, returning nil when absent.
func (r *CompanyRepository) Get(ctx context.Context, ticker string) (*contracts.Company, error) {
	query := `
		SELECT ticker, name, sector, industry, market_cap, current_price, investment_score, target_price
		FROM companies
		WHERE ticker = $1
	`

	var c contracts.Company
	err := r.pool.QueryRow(ctx, query, ticker).Scan(
		&c.Ticker, &c.Name, &c.Sector, &c.Industry, &c.MarketCap,
		&c.CurrentPrice, &c.InvestmentScore, &c.TargetPrice,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListTickers returns all known tickers.
func (r *CompanyRepository) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT ticker FROM companies ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// Upsert inserts a company or overwrites its descriptive fields, reporting
// whether a new row was created. Derived fields are never touched here.
func (r *CompanyRepository) Upsert(ctx context.Context, company *contracts.Company) (bool, error) {
	query := `
		INSERT INTO companies (ticker, name, sector, industry, market_cap, current_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			industry = EXCLUDED.industry,
			market_cap = EXCLUDED.market_cap
		RETURNING (xmax = 0)
	`

	var created bool
	err := r.pool.QueryRow(ctx, query,
		company.Ticker, company.Name, company.Sector, company.Industry,
		company.MarketCap, company.CurrentPrice,
	).Scan(&created)
	return created, err
}

// UpdateCurrentPrice sets the latest traded price.
func (r *CompanyRepository) UpdateCurrentPrice(ctx context.Context, ticker string, price float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE companies SET current_price = $2 WHERE ticker = $1`,
		ticker, price,
	)
	return err
}

// UpdateScores sets the derived investment score and target price.
func (r *CompanyRepository) UpdateScores(ctx context.Context, ticker string, investmentScore, targetPrice *float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE companies SET investment_score = $2, target_price = $3 WHERE ticker = $1`,
		ticker, investmentScore, targetPrice,
	)
	return err
}

// ListRanked returns companies ordered by investment score descending,
// unscored companies last.
func (r *CompanyRepository) ListRanked(ctx context.Context, limit int) ([]contracts.Company, error) {
	query := `
		SELECT ticker, name, sector, industry, market_cap, current_price, investment_score, target_price
		FROM companies
		ORDER BY investment_score DESC NULLS LAST, ticker
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []contracts.Company
	for rows.Next() {
		var c contracts.Company
		if err := rows.Scan(
			&c.Ticker, &c.Name, &c.Sector, &c.Industry, &c.MarketCap,
			&c.CurrentPrice, &c.InvestmentScore, &c.TargetPrice,
		); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
