// Package core holds the ledger domain: cases, payments, amount parsing and
// the reconciliation computation. It has no storage or transport concerns.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rejects signs, so amounts are always non-negative. Validation of the
// allowed range (zero agreed value vs. strictly positive payment) is left to
// the input types.
//
// Examples:
//
//	ParseAmount("1250")    -> 1250, nil
//	ParseAmount("12.34")   -> 12.34, nil
//	ParseAmount("12,34")   -> 12.34, nil
//	ParseAmount("-1")      -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimal places for display and
// export. Calculations always use the exact decimal value.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
