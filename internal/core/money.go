// Package core owns the e-billing domain: money, dates, invoice and accrual
// records, and the ledger state machine that moves invoices between
// collections while keeping budget totals consistent.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a currency-agnostic amount in cents. Calculations stay in cents;
// floating point is for display only.
type Money struct {
	Cents int64 `json:"cents"`
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Thousands separators (commas) are
// stripped before parsing, so "1,250.00" and "1250.00" are equivalent.
// Zero is a valid result; negative or malformed input is rejected.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "$") {
		s = strings.TrimSpace(s[1:])
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take the first two fractional digits; half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// ParseMoney is ParseDecimalToCents wrapped in a Money value.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// Dollars returns the amount as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as a plain decimal, e.g. "1250.00".
func (m Money) String() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Add returns m + other. Derived totals may legitimately go negative
// (over-budget), so no sign check happens here.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}
