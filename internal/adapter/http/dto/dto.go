package dto

import "billing-engine/pkg/money"

// RegisterRequest is the request body for merchant registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for merchant/staff login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	AsStaff  bool   `json:"as_staff"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// CurrencyResponse is one entry of GET /currencies.
type CurrencyResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// CurrenciesResponse is the full GET /currencies body.
type CurrenciesResponse struct {
	Currencies []CurrencyResponse `json:"currencies"`
}

// RatesResponse is the GET /rates/{from_id} body: currency id to
// cheapest conversion rate, keyed as a string since JSON object keys
// must be strings.
type RatesResponse struct {
	Rates map[string]money.Money `json:"rates"`
}

// SetConversionRateRequest is the request body for POST /rates, a
// staff-only administrative upsert of one conversion graph edge.
type SetConversionRateRequest struct {
	FromCurrencyID int64       `json:"from_currency_id" binding:"required"`
	ToCurrencyID   int64       `json:"to_currency_id" binding:"required"`
	Rate           money.Money `json:"rate"`
	AllowReversed  bool        `json:"allow_reversed"`
}

// ConversionRateResponse is the POST /rates response body.
type ConversionRateResponse struct {
	ID             int64       `json:"id"`
	FromCurrencyID int64       `json:"from_currency_id"`
	ToCurrencyID   int64       `json:"to_currency_id"`
	Rate           money.Money `json:"rate"`
	AllowReversed  bool        `json:"allow_reversed"`
}

// CreateWalletRequest is the request body for POST /wallet.
type CreateWalletRequest struct {
	CurrencyID int64 `json:"currency_id" binding:"required"`
}

// CreateInvoiceRequest is the request body for POST /invoice.
type CreateInvoiceRequest struct {
	Amount     money.Money `json:"amount"`
	ToWalletID int64       `json:"to_wallet_id" binding:"required"`
}

// PaginatedResponse wraps any list in spec's {data,itemsCount} envelope.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	ItemsCount int64 `json:"itemsCount"`
}

// PaymentInfoResponse is the GET /pay/{token} body.
type PaymentInfoResponse struct {
	WalletID   int64       `json:"wallet_id"`
	CurrencyID int64       `json:"currency_id"`
	Amount     money.Money `json:"amount"`
	Paid       money.Money `json:"paid"`
	Unpaid     money.Money `json:"unpaid"`
}

// CreateTransactionRequest is the request body for POST /pay/{token}.
// Exactly one of FromWalletID (internal) or CurrencyID (external) is set.
type CreateTransactionRequest struct {
	FromWalletID    *int64       `json:"from_wallet_id,omitempty"`
	CurrencyID      *int64       `json:"currency_id,omitempty"`
	Amount          *money.Money `json:"amount,omitempty"`
	EffectiveAmount *money.Money `json:"effective_amount,omitempty"`
}

// ExternalTransactionResponse is returned by POST /pay/{token} for an
// external transaction: the payer continues to the attempt flow.
type ExternalTransactionResponse struct {
	Token      string `json:"token"`
	AttemptURL string `json:"attempt_url"`
}

// InternalTransactionResponse is returned by POST /pay/{token} for an
// internal (wallet-to-wallet) transaction, settled synchronously.
type InternalTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Status      string              `json:"status"`
}

// TransactionResponse mirrors domain.Transaction on the wire.
type TransactionResponse struct {
	ID              int64       `json:"id"`
	Token           string      `json:"token"`
	Kind            string      `json:"kind"`
	Amount          money.Money `json:"amount"`
	EffectiveAmount money.Money `json:"effective_amount"`
	Status          string      `json:"status"`
	InvoiceID       int64       `json:"invoice_id"`
	FromWalletID    *int64      `json:"from_wallet_id,omitempty"`
}

// PaymentSystemResponse is one entry of GET /attempt/{token}.
type PaymentSystemResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateAttemptRequest is the request body for POST /attempt/{token}.
type CreateAttemptRequest struct {
	PaymentSystemID int64 `json:"payment_system_id" binding:"required"`
}

// CreateAttemptResponse is the response body for POST /attempt/{token}.
type CreateAttemptResponse struct {
	URL string `json:"url"`
}

// RefundResponse is the response body for POST /refund/{transaction_token}.
type RefundResponse struct {
	Status string `json:"status"`
}
