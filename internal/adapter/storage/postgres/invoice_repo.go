package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// InvoiceRepo implements ports.InvoiceRepository.
type InvoiceRepo struct {
	pool Pool
}

// NewInvoiceRepo creates a new InvoiceRepo.
func NewInvoiceRepo(pool Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	var amount string
	err := row.Scan(&inv.ID, &inv.Token, &amount, &inv.Status, &inv.ToWalletID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	parsed, err := parseMoney(amount)
	if err != nil {
		return nil, err
	}
	inv.Amount = parsed
	return inv, nil
}

const invoiceColumns = `id, token, amount, status, to_wallet_id, created_at, updated_at`

// Create inserts a new invoice.
func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (token, amount, status, to_wallet_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.pool.QueryRow(ctx, query, inv.Token, inv.Amount.String(), inv.Status, inv.ToWalletID, inv.CreatedAt, inv.UpdatedAt).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID fetches an invoice by id (non-locking read).
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by id: %w", err)
	}
	return inv, nil
}

// GetByToken fetches an invoice by its client-facing token.
func (r *InvoiceRepo) GetByToken(ctx context.Context, token string) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by token: %w", err)
	}
	return inv, nil
}

// GetByIDForUpdate locks the invoice row for the caller's scope.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Invoice, error) {
	inv, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice for update: %w", err)
	}
	return inv, nil
}

// UpdateStatus advances invoice status within the caller's scope.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.InvoiceStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice not found: %d", id)
	}
	return nil
}

// List returns a paginated, optionally merchant-scoped set of invoices.
func (r *InvoiceRepo) List(ctx context.Context, params ports.InvoiceListParams) ([]domain.Invoice, int64, error) {
	var rows pgx.Rows
	var err error
	offset := (params.Page - 1) * params.PageSize
	if params.MerchantID != nil {
		query := `SELECT i.id, i.token, i.amount, i.status, i.to_wallet_id, i.created_at, i.updated_at
			FROM invoices i JOIN wallets w ON w.id = i.to_wallet_id
			WHERE w.merchant_id = $1 ORDER BY i.id DESC LIMIT $2 OFFSET $3`
		rows, err = r.pool.Query(ctx, query, *params.MerchantID, params.PageSize, offset)
	} else {
		query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY id DESC LIMIT $1 OFFSET $2`
		rows, err = r.pool.Query(ctx, query, params.PageSize, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if params.MerchantID != nil {
		err = r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM invoices i JOIN wallets w ON w.id = i.to_wallet_id WHERE w.merchant_id = $1`,
			*params.MerchantID).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	return out, total, nil
}

// PaymentSystemRepo implements ports.PaymentSystemRepository.
type PaymentSystemRepo struct {
	pool Pool
}

// NewPaymentSystemRepo creates a new PaymentSystemRepo.
func NewPaymentSystemRepo(pool Pool) *PaymentSystemRepo {
	return &PaymentSystemRepo{pool: pool}
}

func scanPaymentSystem(row pgx.Row) (*domain.PaymentSystem, error) {
	ps := &domain.PaymentSystem{}
	if err := row.Scan(&ps.ID, &ps.Name, &ps.SystemType, &ps.DecryptionKey, &ps.CreatedAt); err != nil {
		return nil, err
	}
	return ps, nil
}

const paymentSystemColumns = `id, name, system_type, decryption_key, created_at`

// GetByID fetches a payment system by id.
func (r *PaymentSystemRepo) GetByID(ctx context.Context, id int64) (*domain.PaymentSystem, error) {
	ps, err := scanPaymentSystem(r.pool.QueryRow(ctx, `SELECT `+paymentSystemColumns+` FROM payment_systems WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment system by id: %w", err)
	}
	return ps, nil
}

// GetByIDAndType fetches a payment system, asserting its type, per
// spec.md §4.5 step 1 (fails unknown_system otherwise).
func (r *PaymentSystemRepo) GetByIDAndType(ctx context.Context, id int64, systemType domain.PaymentSystemType) (*domain.PaymentSystem, error) {
	ps, err := scanPaymentSystem(r.pool.QueryRow(ctx,
		`SELECT `+paymentSystemColumns+` FROM payment_systems WHERE id = $1 AND system_type = $2`, id, systemType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment system by id and type: %w", err)
	}
	return ps, nil
}

// Upsert inserts or updates a payment system by name, used to seed the
// table from configuration at startup (spec.md §6).
func (r *PaymentSystemRepo) Upsert(ctx context.Context, ps *domain.PaymentSystem) error {
	query := `INSERT INTO payment_systems (name, system_type, decryption_key, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name)
		DO UPDATE SET system_type = EXCLUDED.system_type, decryption_key = EXCLUDED.decryption_key
		RETURNING id`
	return r.pool.QueryRow(ctx, query, ps.Name, ps.SystemType, ps.DecryptionKey, ps.CreatedAt).Scan(&ps.ID)
}

// List returns every registered payment system.
func (r *PaymentSystemRepo) List(ctx context.Context) ([]domain.PaymentSystem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentSystemColumns+` FROM payment_systems ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list payment systems: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentSystem
	for rows.Next() {
		ps, err := scanPaymentSystem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment system: %w", err)
		}
		out = append(out, *ps)
	}
	return out, rows.Err()
}
