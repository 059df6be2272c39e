package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AttemptRepo implements ports.AttemptRepository.
type AttemptRepo struct {
	pool Pool
}

// NewAttemptRepo creates a new AttemptRepo.
func NewAttemptRepo(pool Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

// Create inserts a new attempt within the caller's scope.
func (r *AttemptRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Attempt) error {
	query := `INSERT INTO attempts (token, response, status, transaction_id, payment_system_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := tx.QueryRow(ctx, query, a.Token, a.Response, a.Status, a.TransactionID, a.PaymentSystemID, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// GetByID fetches an attempt by id (non-locking read).
func (r *AttemptRepo) GetByID(ctx context.Context, id int64) (*domain.Attempt, error) {
	a := &domain.Attempt{}
	query := `SELECT id, token, response, status, transaction_id, payment_system_id, created_at, updated_at
		FROM attempts WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Token, &a.Response, &a.Status, &a.TransactionID, &a.PaymentSystemID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attempt by id: %w", err)
	}
	return a, nil
}

// GetPendingWithLineageForUpdate locks (Attempt, Transaction, Invoice) in
// one round trip, filtered on Attempt.status=pending. This is the single
// query spec.md §4.4 calls out as acquiring all three locks atomically
// with no deadlock window between them.
func (r *AttemptRepo) GetPendingWithLineageForUpdate(ctx context.Context, tx pgx.Tx, attemptID int64) (*domain.Attempt, *domain.Transaction, *domain.Invoice, error) {
	query := `SELECT
		a.id, a.token, a.response, a.status, a.transaction_id, a.payment_system_id, a.created_at, a.updated_at,
		t.id, t.token, t.kind, t.amount, t.effective_amount, t.currency_id, t.status, t.invoice_id, t.from_wallet_id, t.created_at, t.updated_at,
		i.id, i.token, i.amount, i.status, i.to_wallet_id, i.created_at, i.updated_at
		FROM attempts a
		JOIN transactions t ON t.id = a.transaction_id
		JOIN invoices i ON i.id = t.invoice_id
		WHERE a.id = $1 AND a.status = 'pending'
		FOR UPDATE OF a, t, i`

	a := &domain.Attempt{}
	t := &domain.Transaction{}
	inv := &domain.Invoice{}
	var tAmount, tEffective, iAmount string
	err := tx.QueryRow(ctx, query, attemptID).Scan(
		&a.ID, &a.Token, &a.Response, &a.Status, &a.TransactionID, &a.PaymentSystemID, &a.CreatedAt, &a.UpdatedAt,
		&t.ID, &t.Token, &t.Kind, &tAmount, &tEffective, &t.CurrencyID, &t.Status, &t.InvoiceID, &t.FromWalletID, &t.CreatedAt, &t.UpdatedAt,
		&inv.ID, &inv.Token, &iAmount, &inv.Status, &inv.ToWalletID, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, nil
		}
		return nil, nil, nil, fmt.Errorf("get pending attempt lineage: %w", err)
	}
	if t.Amount, err = parseMoney(tAmount); err != nil {
		return nil, nil, nil, err
	}
	if t.EffectiveAmount, err = parseMoney(tEffective); err != nil {
		return nil, nil, nil, err
	}
	if inv.Amount, err = parseMoney(iAmount); err != nil {
		return nil, nil, nil, err
	}
	return a, t, inv, nil
}

// UpdateStatusAndResponse closes an attempt, persisting the decrypted
// webhook plaintext into Response (spec.md §4.5 step 4).
func (r *AttemptRepo) UpdateStatusAndResponse(ctx context.Context, tx pgx.Tx, id int64, status domain.AttemptStatus, response []byte) error {
	query := `UPDATE attempts SET status = $1, response = $2, updated_at = NOW() WHERE id = $3`
	tag, err := tx.Exec(ctx, query, status, response, id)
	if err != nil {
		return fmt.Errorf("update attempt status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attempt not found: %d", id)
	}
	return nil
}
