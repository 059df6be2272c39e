package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// Create inserts a new merchant into the database.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (username, bcrypt_password_hash, created_at)
		VALUES ($1, $2, $3) RETURNING id`

	err := r.pool.QueryRow(ctx, query, m.Username, m.BcryptPasswordHash, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByID fetches a merchant by its id.
func (r *MerchantRepo) GetByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	query := `SELECT id, username, bcrypt_password_hash, created_at FROM merchants WHERE id = $1`

	m := &domain.Merchant{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Username, &m.BcryptPasswordHash, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by id: %w", err)
	}
	return m, nil
}

// GetByUsername fetches a merchant by username.
func (r *MerchantRepo) GetByUsername(ctx context.Context, username string) (*domain.Merchant, error) {
	query := `SELECT id, username, bcrypt_password_hash, created_at FROM merchants WHERE username = $1`

	m := &domain.Merchant{}
	err := r.pool.QueryRow(ctx, query, username).Scan(&m.ID, &m.Username, &m.BcryptPasswordHash, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by username: %w", err)
	}
	return m, nil
}

// StaffRepo implements ports.StaffRepository.
type StaffRepo struct {
	pool Pool
}

// NewStaffRepo creates a new StaffRepo.
func NewStaffRepo(pool Pool) *StaffRepo {
	return &StaffRepo{pool: pool}
}

// GetByUsername fetches a staff account by username.
func (r *StaffRepo) GetByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	query := `SELECT id, username, bcrypt_password_hash, created_at FROM staff WHERE username = $1`

	s := &domain.Staff{}
	err := r.pool.QueryRow(ctx, query, username).Scan(&s.ID, &s.Username, &s.BcryptPasswordHash, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff by username: %w", err)
	}
	return s, nil
}
