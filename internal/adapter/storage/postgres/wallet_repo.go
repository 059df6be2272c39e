package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-engine/internal/core/domain"
	"billing-engine/pkg/money"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	var amount string
	err := row.Scan(&w.ID, &w.MerchantID, &w.CurrencyID, &amount, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	parsed, err := money.Parse(amount)
	if err != nil {
		return nil, fmt.Errorf("parse wallet amount: %w", err)
	}
	w.Amount = parsed
	return w, nil
}

// Create inserts a new wallet with zero balance.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (merchant_id, currency_id, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.pool.QueryRow(ctx, query, w.MerchantID, w.CurrencyID, w.Amount.String(), w.CreatedAt, w.UpdatedAt).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by id (non-locking read).
func (r *WalletRepo) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	query := `SELECT id, merchant_id, currency_id, amount, created_at, updated_at FROM wallets WHERE id = $1`
	w, err := scanWallet(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

// GetByMerchantAndCurrency fetches a wallet by (merchant, currency) (non-locking read).
func (r *WalletRepo) GetByMerchantAndCurrency(ctx context.Context, merchantID, currencyID int64) (*domain.Wallet, error) {
	query := `SELECT id, merchant_id, currency_id, amount, created_at, updated_at
		FROM wallets WHERE merchant_id = $1 AND currency_id = $2`
	w, err := scanWallet(r.pool.QueryRow(ctx, query, merchantID, currencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by merchant and currency: %w", err)
	}
	return w, nil
}

// GetByIDForUpdate locks a wallet row for the duration of the caller's scope.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Wallet, error) {
	query := `SELECT id, merchant_id, currency_id, amount, created_at, updated_at FROM wallets WHERE id = $1 FOR UPDATE`
	w, err := scanWallet(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update by id: %w", err)
	}
	return w, nil
}

// GetByMerchantAndIDForUpdate locks a wallet row, asserting merchant ownership
// (used by pay_with_wallet to lock the payer's source wallet).
func (r *WalletRepo) GetByMerchantAndIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID, walletID int64) (*domain.Wallet, error) {
	query := `SELECT id, merchant_id, currency_id, amount, created_at, updated_at
		FROM wallets WHERE id = $1 AND merchant_id = $2 FOR UPDATE`
	w, err := scanWallet(tx.QueryRow(ctx, query, walletID, merchantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update by merchant: %w", err)
	}
	return w, nil
}

// UpdateAmount sets a wallet's balance within the caller's scope.
func (r *WalletRepo) UpdateAmount(ctx context.Context, tx pgx.Tx, walletID int64, amount money.Money) error {
	query := `UPDATE wallets SET amount = $1, updated_at = NOW() WHERE id = $2`
	tag, err := tx.Exec(ctx, query, amount.String(), walletID)
	if err != nil {
		return fmt.Errorf("update wallet amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %d", walletID)
	}
	return nil
}

// ListByMerchant lists every wallet owned by a merchant.
func (r *WalletRepo) ListByMerchant(ctx context.Context, merchantID int64) ([]domain.Wallet, error) {
	query := `SELECT id, merchant_id, currency_id, amount, created_at, updated_at
		FROM wallets WHERE merchant_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}

// ListAll lists every wallet across all merchants (staff view).
func (r *WalletRepo) ListAll(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT id, merchant_id, currency_id, amount, created_at, updated_at FROM wallets ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}
