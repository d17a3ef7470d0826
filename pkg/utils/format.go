// Package utils provides display formatting helpers for resellerdash.
package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// FormatRs formats an amount in whole rupees grouped in thousands,
// e.g. 123456.7 → "Rs 123,457".
func FormatRs(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	if rounded.IsNegative() {
		return "-Rs " + groupThousands(rounded.Neg().IntPart())
	}
	return "Rs " + groupThousands(rounded.IntPart())
}

// FormatRsCompact formats an amount in compact notation.
// e.g., 1927345 → "Rs 1.93 M", 2500000000 → "Rs 2.5 B"
func FormatRsCompact(amount decimal.Decimal) string {
	prefix := "Rs "
	if amount.IsNegative() {
		prefix = "-Rs "
		amount = amount.Neg()
	}

	switch {
	case amount.GreaterThanOrEqual(billion):
		return fmt.Sprintf("%s%s B", prefix, formatWithDecimals(amount.Div(billion)))
	case amount.GreaterThanOrEqual(million):
		return fmt.Sprintf("%s%s M", prefix, formatWithDecimals(amount.Div(million)))
	case amount.GreaterThanOrEqual(thousand):
		return fmt.Sprintf("%s%s K", prefix, formatWithDecimals(amount.Div(thousand)))
	default:
		return prefix + amount.Round(0).String()
	}
}

// FormatPct formats a 0–100 rate with at most one decimal place.
// e.g., 92.45 → "92.5%", 90 → "90%"
func FormatPct(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + "%"
}

// FormatCount formats an integer count grouped in thousands.
// e.g., 1234567 → "1,234,567"
func FormatCount(n int) string {
	if n < 0 {
		return "-" + groupThousands(int64(-n))
	}
	return groupThousands(int64(n))
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n decimal.Decimal) string {
	s := n.StringFixed(2)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
