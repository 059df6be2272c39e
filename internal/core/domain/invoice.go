package domain

import (
	"time"

	"billing-engine/pkg/money"

	"github.com/google/uuid"
)

// InvoiceStatus is the lifecycle state of an Invoice (spec invariants 3-4).
type InvoiceStatus string

const (
	InvoiceStatusPending    InvoiceStatus = "pending"
	InvoiceStatusIncomplete InvoiceStatus = "incomplete"
	InvoiceStatusComplete   InvoiceStatus = "complete"
)

// Invoice is a merchant's request to be paid a specific amount in a
// specific currency, owned by its destination Wallet. Immutable except
// for Status.
type Invoice struct {
	ID         int64         `json:"id"`
	Token      uuid.UUID     `json:"token"`
	Amount     money.Money   `json:"amount"`
	Status     InvoiceStatus `json:"status"`
	ToWalletID int64         `json:"to_wallet_id"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// PaymentInfo is the read-view returned by Invoice Engine's get_payment_info.
type PaymentInfo struct {
	WalletID   int64       `json:"wallet_id"`
	CurrencyID int64       `json:"currency_id"`
	Amount     money.Money `json:"amount"`
	Paid       money.Money `json:"paid"`
	Unpaid     money.Money `json:"unpaid"`
}

// PaymentSystemType enumerates supported external payment rails.
// Spec restricts this to "visa" only.
type PaymentSystemType string

const (
	PaymentSystemTypeVisa PaymentSystemType = "visa"
)

// PaymentSystem is a registered external settlement rail. DecryptionKey
// never leaves the process; it is the symmetric key used to authenticate
// webhook callbacks (see pkg/fernet).
type PaymentSystem struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	SystemType     PaymentSystemType `json:"system_type"`
	DecryptionKey  []byte            `json:"-"`
	CreatedAt      time.Time         `json:"created_at"`
}
