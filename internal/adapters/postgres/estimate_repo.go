package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// EstimateRepo implements ports.EstimateRepository.
type EstimateRepo struct {
	db *DB
}

func NewEstimateRepo(db *DB) *EstimateRepo {
	return &EstimateRepo{db: db}
}

// Insert stores an estimate. Replays of the same id are ignored so redelivered
// events do not fail.
func (r *EstimateRepo) Insert(ctx context.Context, e *domain.Estimate) error {
	reservations, err := json.Marshal(e.Reservations)
	if err != nil {
		return fmt.Errorf("encode reservations: %w", err)
	}
	legs, err := json.Marshal(e.Legs)
	if err != nil {
		return fmt.Errorf("encode legs: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO cost_estimates
			(id, best_choice, price_per_minute, price_per_kilometer, reservations, legs, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, string(e.BestChoice), e.Prices.PricingPerMinute, e.Prices.PricingPerKilometer,
		string(reservations), string(legs), e.CreatedAt)
	return err
}

func (r *EstimateRepo) GetByID(ctx context.Context, id string) (*domain.Estimate, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id::text, best_choice, price_per_minute, price_per_kilometer, reservations, legs, created_at
		FROM cost_estimates WHERE id::text = $1
	`, id)

	e, err := scanEstimate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("estimate %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns estimates newest first.
func (r *EstimateRepo) List(ctx context.Context, offset, limit int) ([]domain.Estimate, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, best_choice, price_per_minute, price_per_kilometer, reservations, legs, created_at
		FROM cost_estimates
		ORDER BY created_at DESC, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	estimates := make([]domain.Estimate, 0, limit)
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, *e)
	}
	return estimates, rows.Err()
}

func (r *EstimateRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM cost_estimates`).Scan(&n)
	return n, err
}

func scanEstimate(row pgx.Row) (*domain.Estimate, error) {
	var (
		e                  domain.Estimate
		bestChoice         string
		reservations, legs []byte
	)
	if err := row.Scan(&e.ID, &bestChoice, &e.Prices.PricingPerMinute, &e.Prices.PricingPerKilometer,
		&reservations, &legs, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.BestChoice = domain.Scheme(bestChoice)

	if err := json.Unmarshal(reservations, &e.Reservations); err != nil {
		return nil, fmt.Errorf("decode reservations of %s: %w", e.ID, err)
	}
	if len(legs) > 0 {
		if err := json.Unmarshal(legs, &e.Legs); err != nil {
			return nil, fmt.Errorf("decode legs of %s: %w", e.ID, err)
		}
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
