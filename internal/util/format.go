package util

import (
	"fmt"
	"strconv"
)

// FormatTokens formats a token count with a K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatTokens(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatDecimal formats a value with one decimal place.
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FormatPercent formats a percentage with one decimal place.
func FormatPercent(v float64) string {
	return FormatDecimal(v) + "%"
}
