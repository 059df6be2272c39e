package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CurrencyRepo implements ports.CurrencyRepository.
type CurrencyRepo struct {
	pool Pool
}

// NewCurrencyRepo creates a new CurrencyRepo.
func NewCurrencyRepo(pool Pool) *CurrencyRepo {
	return &CurrencyRepo{pool: pool}
}

// List returns every registered currency.
func (r *CurrencyRepo) List(ctx context.Context) ([]domain.Currency, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, created_at FROM currencies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var out []domain.Currency
	for rows.Next() {
		var c domain.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a currency by id.
func (r *CurrencyRepo) GetByID(ctx context.Context, id int64) (*domain.Currency, error) {
	c := &domain.Currency{}
	err := r.pool.QueryRow(ctx, `SELECT id, code, created_at FROM currencies WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get currency by id: %w", err)
	}
	return c, nil
}

// ConversionRateRepo implements ports.ConversionRateRepository.
type ConversionRateRepo struct {
	pool Pool
}

// NewConversionRateRepo creates a new ConversionRateRepo.
func NewConversionRateRepo(pool Pool) *ConversionRateRepo {
	return &ConversionRateRepo{pool: pool}
}

// ListAll returns every conversion rate edge, the source for rebuilding
// the Conversion Graph.
func (r *ConversionRateRepo) ListAll(ctx context.Context) ([]domain.ConversionRate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, from_currency_id, to_currency_id, rate, allow_reversed, created_at, updated_at
		 FROM conversion_rates`)
	if err != nil {
		return nil, fmt.Errorf("list conversion rates: %w", err)
	}
	defer rows.Close()

	var out []domain.ConversionRate
	for rows.Next() {
		var cr domain.ConversionRate
		var rate string
		if err := rows.Scan(&cr.ID, &cr.FromCurrencyID, &cr.ToCurrencyID, &rate, &cr.AllowReversed, &cr.CreatedAt, &cr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion rate: %w", err)
		}
		parsed, err := parseMoney(rate)
		if err != nil {
			return nil, err
		}
		cr.Rate = parsed
		out = append(out, cr)
	}
	return out, rows.Err()
}

// Upsert inserts or updates a conversion rate edge by (from, to).
func (r *ConversionRateRepo) Upsert(ctx context.Context, rate *domain.ConversionRate) error {
	query := `INSERT INTO conversion_rates (from_currency_id, to_currency_id, rate, allow_reversed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (from_currency_id, to_currency_id)
		DO UPDATE SET rate = EXCLUDED.rate, allow_reversed = EXCLUDED.allow_reversed, updated_at = NOW()
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		rate.FromCurrencyID, rate.ToCurrencyID, rate.Rate.String(), rate.AllowReversed,
		rate.CreatedAt, rate.UpdatedAt,
	).Scan(&rate.ID)
}
