package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, token, kind, amount, effective_amount, currency_id, status, invoice_id, from_wallet_id, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var amount, effective string
	err := row.Scan(&t.ID, &t.Token, &t.Kind, &amount, &effective, &t.CurrencyID, &t.Status, &t.InvoiceID, &t.FromWalletID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if t.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	if t.EffectiveAmount, err = parseMoney(effective); err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new transaction within the caller's scope.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (token, kind, amount, effective_amount, currency_id, status, invoice_id, from_wallet_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := tx.QueryRow(ctx, query,
		t.Token, t.Kind, t.Amount.String(), t.EffectiveAmount.String(), t.CurrencyID, t.Status,
		t.InvoiceID, t.FromWalletID, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by id (non-locking read).
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// GetByToken fetches a transaction by its client-facing token.
func (r *TransactionRepo) GetByToken(ctx context.Context, token string) (*domain.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by token: %w", err)
	}
	return t, nil
}

// GetByIDForUpdate locks a transaction row for the caller's scope.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Transaction, error) {
	t, err := scanTransaction(tx.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction for update: %w", err)
	}
	return t, nil
}

// UpdateStatus transitions a transaction's status within the caller's scope.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.TransactionStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %d", id)
	}
	return nil
}

// ListSuccessfulForUpdate locks every successful transaction of an invoice,
// used by Invoice Engine's fetch() to total paid amounts consistently
// (spec.md §5 lock ordering).
func (r *TransactionRepo) ListSuccessfulForUpdate(ctx context.Context, tx pgx.Tx, invoiceID int64) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE invoice_id = $1 AND status = 'success' ORDER BY id FOR UPDATE`
	return queryTransactions(ctx, tx, query, invoiceID)
}

// ListSuccessfulExcludingForUpdate is the same as ListSuccessfulForUpdate
// but excludes one transaction id, used by Attempt Engine's success() to
// total "other" successful transactions (spec.md §4.4).
func (r *TransactionRepo) ListSuccessfulExcludingForUpdate(ctx context.Context, tx pgx.Tx, invoiceID, excludeTransactionID int64) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE invoice_id = $1 AND status = 'success' AND id != $2 ORDER BY id FOR UPDATE`
	return queryTransactions(ctx, tx, query, invoiceID, excludeTransactionID)
}

type txQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryTransactions(ctx context.Context, q txQuerier, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactionRows(rows)
}

func scanTransactionRows(rows pgx.Rows) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
