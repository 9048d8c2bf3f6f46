// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatUSD formats a dollar amount with thousands separators.
func FormatUSD(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var groups []string
	for n > 3 {
		groups = append([]string{s[n-3:]}, groups...)
		s = s[:n-3]
		n = len(s)
	}
	return s + "," + strings.Join(groups, ",")
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats a profit/loss amount with an explicit sign.
func FormatPnL(pnl float64) string {
	formatted := FormatUSD(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatQuantity formats a share quantity, dropping a trailing zero
// fraction for whole-share amounts.
func FormatQuantity(qty float64) string {
	if qty == float64(int64(qty)) {
		return groupThousands(fmt.Sprintf("%d", int64(qty)))
	}
	return fmt.Sprintf("%g", qty)
}

// FormatCompact formats a dollar amount in compact form (K/M/B).
func FormatCompact(amount float64) string {
	abs := amount
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", amount/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", amount/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", amount/1e3)
	}
	return FormatUSD(amount)
}
