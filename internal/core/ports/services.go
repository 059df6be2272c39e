package ports

import (
	"context"
	"time"

	"billing-engine/internal/core/domain"
	"billing-engine/pkg/money"
)

// HashService handles password hashing (bcrypt, per spec's
// bcrypt_password_hash field).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT session tokens issued after basic-auth login.
type TokenService interface {
	Generate(principalID int64, isStaff bool) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	PrincipalID int64
	IsStaff     bool
}

// --- Engine service ports (spec.md §4) ---

// ConversionGraphService implements spec.md §4.1: a directed weighted
// graph over currencies with cached, cheapest-path rate computation.
type ConversionGraphService interface {
	// Rate returns the cheapest conversion rate from one currency to
	// another, or (Money{}, false, nil) if no path exists.
	Rate(ctx context.Context, fromCurrencyID, toCurrencyID int64, fresh bool) (rate money.Money, ok bool, err error)
	// RatesFrom returns, for every reachable currency, the cheapest rate
	// to convert INTO fromCurrencyID (computed on the reversed graph).
	RatesFrom(ctx context.Context, fromCurrencyID int64, fresh bool) (map[int64]money.Money, error)
	// Invalidate drops all cached rate results; called after a
	// ConversionRate row is mutated.
	Invalidate()
}

// InvoiceEngine implements spec.md §4.2.
type InvoiceEngine interface {
	CreateInvoice(ctx context.Context, merchantID, toWalletID int64, amount money.Money) (*domain.Invoice, error)
	GetPaymentInfo(ctx context.Context, invoiceID int64) (*domain.PaymentInfo, error)
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*domain.Transaction, error)
	PayWithWallet(ctx context.Context, req PayWithWalletRequest) (*domain.Transaction, error)
}

// CreateTransactionRequest creates an external transaction against an
// invoice. Exactly one of Amount/EffectiveAmount must be supplied.
type CreateTransactionRequest struct {
	InvoiceID       int64
	CurrencyID      int64
	Amount          *money.Money
	EffectiveAmount *money.Money
}

// PayWithWalletRequest creates and immediately attempts settlement of an
// internal (wallet-to-wallet) transaction.
type PayWithWalletRequest struct {
	InvoiceID       int64
	MerchantID      int64
	WalletID        int64
	Amount          *money.Money
	EffectiveAmount *money.Money
}

// TransactionEngine implements spec.md §4.3.
type TransactionEngine interface {
	CreateAttempt(ctx context.Context, transactionID, paymentSystemID int64) (*domain.Attempt, error)
	GetPaymentInfo(ctx context.Context, transactionID int64) ([]domain.PaymentSystem, error)
	Refund(ctx context.Context, transactionID int64) (*domain.Transaction, error)
}

// AttemptSendResult is returned by AttemptEngine.Send.
type AttemptSendResult struct {
	URL   string
	Error string
}

// AttemptEngine implements spec.md §4.4, the critical section that
// cascades Attempt closure into Transaction and Invoice status.
type AttemptEngine interface {
	Success(ctx context.Context, attemptID int64) error
	Fail(ctx context.Context, attemptID int64) error
	Error(ctx context.Context, attemptID int64) error
	Send(ctx context.Context, attemptID int64) (*AttemptSendResult, error)
}

// WebhookIngestor implements spec.md §4.5: decrypt, parse, dispatch.
type WebhookIngestor interface {
	Ingest(ctx context.Context, paymentSystemID int64, ciphertext []byte) error
}

// WebhookPayload is the decrypted webhook JSON body.
type WebhookPayload struct {
	AttemptID int64  `json:"attempt_id"`
	Status    string `json:"status"` // success | fail | error
}

// --- Ambient services ---

// AuthService defines merchant/staff registration and login.
type AuthService interface {
	RegisterMerchant(ctx context.Context, username, password string) (*domain.Merchant, error)
	Login(ctx context.Context, username, password string, asStaff bool) (string, time.Time, error)
}

// WalletService defines merchant wallet provisioning and listing.
type WalletService interface {
	CreateWallet(ctx context.Context, merchantID, currencyID int64) (*domain.Wallet, error)
	ListWallets(ctx context.Context, merchantID int64, isStaff bool) ([]domain.Wallet, error)
}

// ReportingService defines read-side dashboard/list queries.
type ReportingService interface {
	ListInvoices(ctx context.Context, params InvoiceListParams) ([]domain.Invoice, int64, error)
	GetInvoiceByToken(ctx context.Context, token string) (*domain.Invoice, error)
}

// AuditService records security-relevant actions (write operations,
// logins) asynchronously, never blocking the request that triggered them.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
