// Package money implements fixed-point decimal arithmetic for monetary
// values: scale 3, half-even rounding on every operation that can lose
// precision. The number of integer digits is not bounded.
package money

import (
	"fmt"
	"math/big"
)

// Scale is the number of fractional digits every Money value carries.
const Scale = 3

var scaleFactor = big.NewInt(1000) // 10^Scale

// Money is a fixed-point decimal: unscaled * 10^-Scale.
// The zero value is 0.000.
type Money struct {
	unscaled big.Int
}

// Zero is the additive identity.
func Zero() Money {
	return Money{}
}

// One is the multiplicative identity (1.000).
func One() Money {
	return Money{unscaled: *new(big.Int).Set(scaleFactor)}
}

// FromInt64 builds a Money from a whole number of units (e.g. FromInt64(5) == 5.000).
func FromInt64(whole int64) Money {
	var m Money
	m.unscaled.Mul(big.NewInt(whole), scaleFactor)
	return m
}

// Parse reads a decimal string like "12.345" or "-0.5" into a Money value,
// rounding half-even if more than Scale fractional digits are given.
func Parse(s string) (Money, error) {
	if s == "" {
		return Money{}, fmt.Errorf("money: empty string")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	for i, c := range s {
		if c == '.' {
			intPart = s[:i]
			fracPart = s[i+1:]
			break
		}
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return Money{}, fmt.Errorf("money: invalid integer part %q", intPart)
	}

	// Normalize fractional part to exactly Scale digits, tracking any
	// remainder beyond Scale digits for half-even rounding.
	extra := ""
	if len(fracPart) > Scale {
		extra = fracPart[Scale:]
		fracPart = fracPart[:Scale]
	}
	for len(fracPart) < Scale {
		fracPart += "0"
	}
	fracDigits, ok := new(big.Int).SetString(fracPart, 10)
	if fracPart != "" && !ok {
		return Money{}, fmt.Errorf("money: invalid fractional part %q", s)
	}
	if fracDigits == nil {
		fracDigits = big.NewInt(0)
	}

	unscaled := new(big.Int).Mul(whole, scaleFactor)
	unscaled.Add(unscaled, fracDigits)

	if extra != "" {
		// Round half-even based on the first discarded digit and whether
		// anything nonzero follows it.
		roundUp := shouldRoundUp(extra, unscaled.Bit(0) == 1)
		if roundUp {
			unscaled.Add(unscaled, big.NewInt(1))
		}
	}

	if neg {
		unscaled.Neg(unscaled)
	}
	return Money{unscaled: *unscaled}, nil
}

func shouldRoundUp(extraDigits string, unscaledIsOdd bool) bool {
	if extraDigits == "" {
		return false
	}
	first := extraDigits[0]
	if first < '5' {
		return false
	}
	if first > '5' {
		return true
	}
	for _, c := range extraDigits[1:] {
		if c != '0' {
			return true
		}
	}
	// Exactly .5 beyond scale: round to even.
	return unscaledIsOdd
}

// String renders the canonical d.ddd form (always Scale fractional digits).
func (m Money) String() string {
	neg := m.unscaled.Sign() < 0
	abs := new(big.Int).Abs(&m.unscaled)
	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(abs, scaleFactor, frac)
	sign := ""
	if neg && (whole.Sign() != 0 || frac.Sign() != 0) {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%0*s", sign, whole.String(), Scale, frac.String())
}

// MarshalJSON encodes Money as a JSON string to avoid float rounding on the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON decodes a JSON string (or bare number) into Money.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	var r Money
	r.unscaled.Add(&m.unscaled, &other.unscaled)
	return r
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	var r Money
	r.unscaled.Sub(&m.unscaled, &other.unscaled)
	return r
}

// Neg returns -m.
func (m Money) Neg() Money {
	var r Money
	r.unscaled.Neg(&m.unscaled)
	return r
}

// Mul returns m * other, rounded half-even to Scale fractional digits.
func (m Money) Mul(other Money) Money {
	// (a/10^s) * (b/10^s) = ab/10^2s; rescale down to 10^s with half-even rounding.
	product := new(big.Int).Mul(&m.unscaled, &other.unscaled)
	return Money{unscaled: *divRoundHalfEven(product, scaleFactor)}
}

// Div returns m / other, rounded half-even to Scale fractional digits.
// Returns an error on division by zero.
func (m Money) Div(other Money) (Money, error) {
	if other.IsZero() {
		return Money{}, fmt.Errorf("money: division by zero")
	}
	// (a/10^s) / (b/10^s) = a/b; scale numerator up by 10^s before integer division.
	numerator := new(big.Int).Mul(&m.unscaled, scaleFactor)
	return Money{unscaled: *divRoundHalfEven(numerator, &other.unscaled)}, nil
}

// divRoundHalfEven computes round_half_even(num/den) as a big.Int.
func divRoundHalfEven(num, den *big.Int) *big.Int {
	neg := (num.Sign() < 0) != (den.Sign() < 0)
	n := new(big.Int).Abs(num)
	d := new(big.Int).Abs(den)

	q := new(big.Int)
	r := new(big.Int)
	q.QuoRem(n, d, r)

	twiceR := new(big.Int).Lsh(r, 1)
	cmp := twiceR.Cmp(d)
	if cmp > 0 || (cmp == 0 && q.Bit(0) == 1) {
		q.Add(q, big.NewInt(1))
	}
	if neg {
		q.Neg(q)
	}
	return q
}

// Cmp compares m to other: -1, 0, or 1.
func (m Money) Cmp(other Money) int {
	return m.unscaled.Cmp(&other.unscaled)
}

// IsZero reports whether m is exactly 0.
func (m Money) IsZero() bool {
	return m.unscaled.Sign() == 0
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.unscaled.Sign() < 0
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.Cmp(other) > 0
}

// GreaterOrEqual reports whether m >= other.
func (m Money) GreaterOrEqual(other Money) bool {
	return m.Cmp(other) >= 0
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.Cmp(other) < 0
}
