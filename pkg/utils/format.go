// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// RoundCents rounds a price to 2 decimal places. Prices are stored with cent
// precision; intermediate analytics keep full float precision.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatDollars formats a number as US currency with thousands separators.
func FormatDollars(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	result := "$" + groupThousands(intPart) + "." + decPart
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
	return groupThousands(s[:n-3]) + "," + s[n-3:]
}

// FormatPercent formats a decimal ratio as a signed percentage.
func FormatPercent(ratio float64) string {
	value := ratio * 100
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatReturn formats an annualized return multiple as a percentage gain,
// e.g. 1.25 renders as "+25.00%".
func FormatReturn(multiple float64) string {
	return FormatPercent(multiple - 1)
}
