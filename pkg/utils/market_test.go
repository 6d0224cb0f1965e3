package utils

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestIsMarketOpen(t *testing.T) {
	et := func(d, hour, min int) time.Time {
		return time.Date(2026, time.August, d, hour, min, 0, 0, EasternLocation)
	}

	// Monday Aug 31, 2026.
	assert.False(t, IsMarketOpen(et(31, 9, 29)))
	assert.True(t, IsMarketOpen(et(31, 9, 30)))
	assert.True(t, IsMarketOpen(et(31, 12, 0)))
	assert.True(t, IsMarketOpen(et(31, 15, 59)))
	assert.False(t, IsMarketOpen(et(31, 16, 0)))

	// Saturday Aug 29, 2026.
	assert.False(t, IsMarketOpen(et(29, 12, 0)))
}

func TestNextFriday(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.August, d, 10, 0, 0, 0, time.UTC)
	}

	friday := time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, friday, NextFriday(day(31))) // Monday
	assert.Equal(t, friday, NextFriday(day(29))) // Saturday

	// A Friday rolls to the following week, never to itself.
	thisFriday := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, friday, NextFriday(thisFriday))
}

// Property: NextFriday always lands on a Friday strictly after its input,
// at most seven days out, at midnight in the input's location.
func TestProperty_NextFriday(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("lands on the next strict Friday", prop.ForAll(
		func(offsetHours int) bool {
			now := start.Add(time.Duration(offsetHours) * time.Hour)
			next := NextFriday(now)

			if next.Weekday() != time.Friday {
				return false
			}
			if !next.After(now) {
				return false
			}
			return next.Sub(now) <= 7*24*time.Hour
		},
		gen.IntRange(0, 24*365*10),
	))

	properties.TestingRun(t)
}
