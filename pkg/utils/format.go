// Package utils provides common utility functions for stockpulse.
package utils

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
)

// FormatUSD formats an amount as US dollars, e.g. "$1,234.56" or "-$12.00".
func FormatUSD(amount float64) string {
	return money.NewFromFloat(amount, money.USD).Display()
}

// FormatSignedUSD is FormatUSD with an explicit "+" for positive amounts.
func FormatSignedUSD(amount float64) string {
	if amount > 0 {
		return "+" + FormatUSD(amount)
	}
	return FormatUSD(amount)
}

// FormatPercent formats a percentage with sign and two decimals: "+1.23%".
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// FormatCompact formats large numbers with K/M/B/T suffixes.
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
