package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// PriceRepository implements contracts.PriceRepository. Bars are unique
// per (ticker, price_date) and append-only.
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// LatestDate returns the most recent stored bar date for a ticker, or nil
// when the ticker has no history.
func (r *PriceRepository) LatestDate(ctx context.Context, ticker string) (*time.Time, error) {
	query := `
		SELECT price_date
		FROM price_bars
		WHERE ticker = $1
		ORDER BY price_date DESC
		LIMIT 1
	`

	var d time.Time
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// InsertBatch stores bars in one round trip, dropping (ticker, date)
// conflicts so re-ingestion never duplicates rows.
func (r *PriceRepository) InsertBatch(ctx context.Context, bars []contracts.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO price_bars (ticker, price_date, open_price, high_price, low_price, close_price, adj_close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker, price_date) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(query,
			bar.Ticker, bar.Date, bar.Open, bar.High, bar.Low,
			bar.Close, bar.AdjClose, bar.Volume,
		)
	}

	return r.pool.SendBatch(ctx, batch).Close()
}

// Range returns bars for a ticker within [from, to], ordered by date.
func (r *PriceRepository) Range(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PriceBar, error) {
	query := `
		SELECT ticker, price_date, open_price, high_price, low_price, close_price, adj_close, volume
		FROM price_bars
		WHERE ticker = $1 AND price_date BETWEEN $2 AND $3
		ORDER BY price_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.PriceBar
	for rows.Next() {
		var b contracts.PriceBar
		if err := rows.Scan(&b.Ticker, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
