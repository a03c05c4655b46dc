package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// BenchmarkRepository implements contracts.BenchmarkRepository.
type BenchmarkRepository struct {
	pool *pgxpool.Pool
}

// NewBenchmarkRepository creates a new benchmark repository.
func NewBenchmarkRepository(pool *pgxpool.Pool) *BenchmarkRepository {
	return &BenchmarkRepository{pool: pool}
}

// LatestDate returns the most recent stored date for a symbol.
func (r *BenchmarkRepository) LatestDate(ctx context.Context, symbol string) (*time.Time, error) {
	query := `
		SELECT price_date
		FROM benchmark_prices
		WHERE symbol = $1
		ORDER BY price_date DESC
		LIMIT 1
	`

	var d time.Time
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// InsertBatch stores closes in one round trip, dropping (symbol, date)
// conflicts.
func (r *BenchmarkRepository) InsertBatch(ctx context.Context, prices []contracts.BenchmarkPrice) error {
	if len(prices) == 0 {
		return nil
	}

	query := `
		INSERT INTO benchmark_prices (symbol, price_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, price_date) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(query, p.Symbol, p.Date, p.Close)
	}

	return r.pool.SendBatch(ctx, batch).Close()
}

// Range returns closes for a symbol within [from, to], ordered by date.
func (r *BenchmarkRepository) Range(ctx context.Context, symbol string, from, to time.Time) ([]contracts.BenchmarkPrice, error) {
	query := `
		SELECT symbol, price_date, close_price
		FROM benchmark_prices
		WHERE symbol = $1 AND price_date BETWEEN $2 AND $3
		ORDER BY price_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []contracts.BenchmarkPrice
	for rows.Next() {
		var p contracts.BenchmarkPrice
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Close); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}
