package handler

import (
	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/core/domain"
)

// toTransactionResponse mirrors a domain.Transaction onto its wire shape.
func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              t.ID,
		Token:           t.Token.String(),
		Kind:            string(t.Kind),
		Amount:          t.Amount,
		EffectiveAmount: t.EffectiveAmount,
		Status:          string(t.Status),
		InvoiceID:       t.InvoiceID,
		FromWalletID:    t.FromWalletID,
	}
}

// toAnySlice boxes a typed slice so it can ride inside a generic
// PaginatedResponse without the caller repeating the element type.
func toAnySlice[T any](items []T) []interface{} {
	out := make([]interface{}, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}
