package domain

import (
	"time"

	"billing-engine/pkg/money"
)

// Currency is a unit of account. Code is one of the spec's supported
// ISO-ish codes (UAH, USD, EUR, GBP) and is unique.
type Currency struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversionRate is a directed edge in the conversion graph: one unit of
// FromCurrencyID is worth Rate units of ToCurrencyID. When AllowReversed
// is set, the graph also carries an implicit reverse edge weighted 1/Rate.
type ConversionRate struct {
	ID              int64     `json:"id"`
	FromCurrencyID  int64     `json:"from_currency_id"`
	ToCurrencyID    int64     `json:"to_currency_id"`
	Rate            money.Money `json:"rate"`
	AllowReversed   bool      `json:"allow_reversed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Wallet holds a merchant's balance in one currency. Balance is never
// negative (spec invariant 1).
type Wallet struct {
	ID         int64       `json:"id"`
	MerchantID int64       `json:"merchant_id"`
	CurrencyID int64       `json:"currency_id"`
	Amount     money.Money `json:"amount"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
