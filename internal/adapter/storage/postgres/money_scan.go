package postgres

import (
	"fmt"

	"billing-engine/pkg/money"
)

// parseMoney parses a decimal column value, wrapping errors with scan context.
func parseMoney(s string) (money.Money, error) {
	m, err := money.Parse(s)
	if err != nil {
		return money.Money{}, fmt.Errorf("parse money column %q: %w", s, err)
	}
	return m, nil
}
