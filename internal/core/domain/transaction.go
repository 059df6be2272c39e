package domain

import (
	"time"

	"billing-engine/pkg/money"

	"github.com/google/uuid"
)

// TransactionKind distinguishes payer-initiated external settlement from
// wallet-to-wallet internal transfer.
type TransactionKind string

const (
	TransactionKindExternal TransactionKind = "external"
	TransactionKindInternal TransactionKind = "internal"
)

// TransactionStatus is the lifecycle state of a Transaction (spec invariant 6).
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusSuccess  TransactionStatus = "success"
	TransactionStatusFailed   TransactionStatus = "fail"
	TransactionStatusRefunded TransactionStatus = "refunded"
)

// Transaction is a single payer's commitment to pay part of an Invoice in
// some currency. Amount is in the payer's currency; EffectiveAmount is
// Amount converted into the Invoice's currency. FromWalletID is set only
// for internal (wallet-to-wallet) transactions.
type Transaction struct {
	ID              int64             `json:"id"`
	Token           uuid.UUID         `json:"token"`
	Kind            TransactionKind   `json:"kind"`
	Amount          money.Money       `json:"amount"`
	EffectiveAmount money.Money       `json:"effective_amount"`
	CurrencyID      int64             `json:"currency_id"`
	Status          TransactionStatus `json:"status"`
	InvoiceID       int64             `json:"invoice_id"`
	FromWalletID    *int64            `json:"from_wallet_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsTerminal reports whether the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusRefunded
}

// IsRefundable reports whether this transaction is eligible for refund.
func (t *Transaction) IsRefundable() bool {
	return t.Status == TransactionStatusSuccess
}

// AttemptStatus is the lifecycle state of an Attempt. Terminal statuses
// are sinks (spec invariant 5).
type AttemptStatus string

const (
	AttemptStatusPending AttemptStatus = "pending"
	AttemptStatusSuccess AttemptStatus = "success"
	AttemptStatusFailed  AttemptStatus = "fail"
)

// Attempt is one externally-mediated try to complete a Transaction via a
// PaymentSystem. Response carries the decrypted webhook plaintext once
// the attempt is closed.
type Attempt struct {
	ID              int64         `json:"id"`
	Token           uuid.UUID     `json:"token"`
	Response        []byte        `json:"-"`
	Status          AttemptStatus `json:"status"`
	TransactionID   int64         `json:"transaction_id"`
	PaymentSystemID int64         `json:"payment_system_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
