package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// RatingRepository implements contracts.RatingRepository. Ratings are
// unique per (analyst_id, ticker, rating_date).
type RatingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Exists reports whether a rating with the same dedup key is stored.
func (r *RatingRepository) Exists(ctx context.Context, analystID, ticker string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ratings
			WHERE analyst_id = $1 AND ticker = $2 AND rating_date = $3
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, analystID, ticker, date).Scan(&exists)
	return exists, err
}

// InsertBatch stores ratings in one round trip, dropping dedup-key
// conflicts so re-ingestion never duplicates rows.
func (r *RatingRepository) InsertBatch(ctx context.Context, ratings []contracts.Rating) error {
	if len(ratings) == 0 {
		return nil
	}

	query := `
		INSERT INTO ratings (analyst_id, ticker, rating_date, rating, price_target)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (analyst_id, ticker, rating_date) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, rating := range ratings {
		batch.Queue(query,
			rating.AnalystID, rating.Ticker, rating.Date,
			string(rating.Category), rating.PriceTarget,
		)
	}

	return r.pool.SendBatch(ctx, batch).Close()
}

// ListByAnalystBefore returns an analyst's ratings dated on or before the
// cutoff, ordered by date.
func (r *RatingRepository) ListByAnalystBefore(ctx context.Context, analystID string, cutoff time.Time) ([]contracts.Rating, error) {
	query := `
		SELECT id, analyst_id, ticker, rating_date, rating, price_target, was_accurate, actual_return
		FROM ratings
		WHERE analyst_id = $1 AND rating_date <= $2
		ORDER BY rating_date ASC
	`

	rows, err := r.pool.Query(ctx, query, analystID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRatings(rows)
}

// ListByTickerSince returns a ticker's ratings dated on or after since,
// ordered by date.
func (r *RatingRepository) ListByTickerSince(ctx context.Context, ticker string, since time.Time) ([]contracts.Rating, error) {
	query := `
		SELECT id, analyst_id, ticker, rating_date, rating, price_target, was_accurate, actual_return
		FROM ratings
		WHERE ticker = $1 AND rating_date >= $2
		ORDER BY rating_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRatings(rows)
}

// UpdateOutcome persists the backtested result on a rating.
func (r *RatingRepository) UpdateOutcome(ctx context.Context, id int64, actualReturn float64, wasAccurate bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE ratings SET actual_return = $2, was_accurate = $3 WHERE id = $1`,
		id, actualReturn, wasAccurate,
	)
	return err
}

func scanRatings(rows pgx.Rows) ([]contracts.Rating, error) {
	var ratings []contracts.Rating
	for rows.Next() {
		var rating contracts.Rating
		var category string
		if err := rows.Scan(
			&rating.ID, &rating.AnalystID, &rating.Ticker, &rating.Date,
			&category, &rating.PriceTarget, &rating.WasAccurate, &rating.ActualReturn,
		); err != nil {
			return nil, err
		}
		rating.Category = contracts.RatingCategory(category)
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}
