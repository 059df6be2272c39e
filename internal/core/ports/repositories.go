package ports

import (
	"context"

	"billing-engine/internal/core/domain"
	"billing-engine/pkg/money"

	"github.com/jackc/pgx/v5"
)

// CurrencyRepository defines persistence operations for currencies.
type CurrencyRepository interface {
	List(ctx context.Context) ([]domain.Currency, error)
	GetByID(ctx context.Context, id int64) (*domain.Currency, error)
}

// ConversionRateRepository defines persistence operations for conversion
// rate edges. Mutations invalidate the Conversion Graph's cache wholesale.
type ConversionRateRepository interface {
	ListAll(ctx context.Context) ([]domain.ConversionRate, error)
	Upsert(ctx context.Context, rate *domain.ConversionRate) error
}

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, m *domain.Merchant) error
	GetByID(ctx context.Context, id int64) (*domain.Merchant, error)
	GetByUsername(ctx context.Context, username string) (*domain.Merchant, error)
}

// StaffRepository defines persistence operations for staff accounts.
type StaffRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Staff, error)
}

// WalletRepository defines persistence operations for wallets. Methods
// accepting pgx.Tx participate in a caller-held scope and use
// SELECT ... FOR UPDATE for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, w *domain.Wallet) error
	GetByID(ctx context.Context, id int64) (*domain.Wallet, error)
	GetByMerchantAndCurrency(ctx context.Context, merchantID, currencyID int64) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Wallet, error)
	GetByMerchantAndIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID, walletID int64) (*domain.Wallet, error)
	UpdateAmount(ctx context.Context, tx pgx.Tx, walletID int64, amount money.Money) error
	ListByMerchant(ctx context.Context, merchantID int64) ([]domain.Wallet, error)
	ListAll(ctx context.Context) ([]domain.Wallet, error)
}

// InvoiceRepository defines persistence operations for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	GetByToken(ctx context.Context, token string) (*domain.Invoice, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.InvoiceStatus) error
	List(ctx context.Context, params InvoiceListParams) ([]domain.Invoice, int64, error)
}

// InvoiceListParams holds filter + pagination for listing invoices.
type InvoiceListParams struct {
	MerchantID *int64
	Page       int
	PageSize   int
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	GetByToken(ctx context.Context, token string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.TransactionStatus) error
	// ListSuccessfulForUpdate locks every successful transaction of an
	// invoice, used to total paid amounts consistently with other locks
	// held in the same scope (spec.md lock ordering).
	ListSuccessfulForUpdate(ctx context.Context, tx pgx.Tx, invoiceID int64) ([]domain.Transaction, error)
	ListSuccessfulExcludingForUpdate(ctx context.Context, tx pgx.Tx, invoiceID, excludeTransactionID int64) ([]domain.Transaction, error)
}

// AttemptRepository defines persistence operations for attempts.
type AttemptRepository interface {
	Create(ctx context.Context, tx pgx.Tx, a *domain.Attempt) error
	GetByID(ctx context.Context, id int64) (*domain.Attempt, error)
	// GetPendingWithLineageForUpdate locks (Attempt, Transaction, Invoice)
	// in one query, filtering on Attempt.status=pending, per spec.md §4.4.
	GetPendingWithLineageForUpdate(ctx context.Context, tx pgx.Tx, attemptID int64) (*domain.Attempt, *domain.Transaction, *domain.Invoice, error)
	UpdateStatusAndResponse(ctx context.Context, tx pgx.Tx, id int64, status domain.AttemptStatus, response []byte) error
}

// PaymentSystemRepository defines persistence operations for payment systems.
type PaymentSystemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PaymentSystem, error)
	GetByIDAndType(ctx context.Context, id int64, systemType domain.PaymentSystemType) (*domain.PaymentSystem, error)
	List(ctx context.Context) ([]domain.PaymentSystem, error)
	// Upsert inserts or updates a payment system by name, used to seed the
	// table from configuration at startup.
	Upsert(ctx context.Context, ps *domain.PaymentSystem) error
}

// AuditRepository defines persistence for audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management used by the
// Session/Scope Machinery to begin the outermost SERIALIZABLE transaction.
type DBTransactor interface {
	BeginSerializable(ctx context.Context) (pgx.Tx, error)
}
