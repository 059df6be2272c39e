package domain

import "time"

// Merchant is a principal identity that owns wallets and invoices.
type Merchant struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	BcryptPasswordHash string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}

// Staff is a principal identity with cross-merchant privileges (refunds).
// Kept as a disjoint table from Merchant per spec.
type Staff struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	BcryptPasswordHash string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}
