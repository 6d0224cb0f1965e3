package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 1.75, RoundCents(1.745000001))
	assert.Equal(t, 1.74, RoundCents(1.744999))
	assert.Equal(t, -1.75, RoundCents(-1.745000001))
	assert.Equal(t, 0.0, RoundCents(0))
}

func TestFormatDollars(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1.5, "$1.50"},
		{999.99, "$999.99"},
		{1000, "$1,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-42.25, "-$42.25"},
		{-1234.5, "-$1,234.50"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDollars(tc.in))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+2.50%", FormatPercent(0.025))
	assert.Equal(t, "0.00%", FormatPercent(0))
	assert.Equal(t, "-5.00%", FormatPercent(-0.05))
}

func TestFormatReturn(t *testing.T) {
	// Annualized multiples render as the gain over break-even.
	assert.Equal(t, "+25.00%", FormatReturn(1.25))
	assert.Equal(t, "0.00%", FormatReturn(1.0))
	assert.Equal(t, "-10.00%", FormatReturn(0.90))
}
