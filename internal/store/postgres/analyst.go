package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ethanwoods/stockrank/internal/contracts"
)

// AnalystRepository implements contracts.AnalystRepository.
type AnalystRepository struct {
	pool *pgxpool.Pool
}

// NewAnalystRepository creates a new analyst repository.
func NewAnalystRepository(pool *pgxpool.Pool) *AnalystRepository {
	return &AnalystRepository{pool: pool}
}

// Get retrieves an analyst by id, returning nil when absent.
func (r *AnalystRepository) Get(ctx context.Context, analystID string) (*contracts.Analyst, error) {
	query := `
		SELECT analyst_id, name, firm, confidence_score, total_ratings, accurate_ratings
		FROM analysts
		WHERE analyst_id = $1
	`

	var a contracts.Analyst
	err := r.pool.QueryRow(ctx, query, analystID).Scan(
		&a.AnalystID, &a.Name, &a.Firm, &a.ConfidenceScore, &a.TotalRatings, &a.AccurateRatings,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all analysts.
func (r *AnalystRepository) List(ctx context.Context) ([]contracts.Analyst, error) {
	query := `
		SELECT analyst_id, name, firm, confidence_score, total_ratings, accurate_ratings
		FROM analysts
		ORDER BY analyst_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAnalysts(rows)
}

// Upsert inserts an analyst or overwrites name and firm, reporting whether
// a new row was created. Confidence fields are never touched here.
func (r *AnalystRepository) Upsert(ctx context.Context, analyst *contracts.Analyst) (bool, error) {
	query := `
		INSERT INTO analysts (analyst_id, name, firm)
		VALUES ($1, $2, $3)
		ON CONFLICT (analyst_id) DO UPDATE SET
			name = EXCLUDED.name,
			firm = EXCLUDED.firm
		RETURNING (xmax = 0)
	`

	var created bool
	err := r.pool.QueryRow(ctx, query, analyst.AnalystID, analyst.Name, analyst.Firm).Scan(&created)
	return created, err
}

// UpdateConfidence sets the derived confidence score and evaluated counts.
func (r *AnalystRepository) UpdateConfidence(ctx context.Context, analystID string, score *float64, total, accurate int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE analysts SET confidence_score = $2, total_ratings = $3, accurate_ratings = $4 WHERE analyst_id = $1`,
		analystID, score, total, accurate,
	)
	return err
}

// ListRanked returns analysts ordered by confidence score descending,
// unscored analysts last.
func (r *AnalystRepository) ListRanked(ctx context.Context, limit int) ([]contracts.Analyst, error) {
	query := `
		SELECT analyst_id, name, firm, confidence_score, total_ratings, accurate_ratings
		FROM analysts
		ORDER BY confidence_score DESC NULLS LAST, analyst_id
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

	return scanAnalysts(rows)
}

func scanAnalysts(rows pgx.Rows) ([]contracts.Analyst, error) {
	var analysts []contracts.Analyst
	for rows.Next() {
		var a contracts.Analyst
		if err := rows.Scan(&a.AnalystID, &a.Name, &a.Firm, &a.ConfidenceScore, &a.TotalRatings, &a.AccurateRatings); err != nil {
			return nil, err
		}
		analysts = append(analysts, a)
	}
	return analysts, rows.Err()
}
