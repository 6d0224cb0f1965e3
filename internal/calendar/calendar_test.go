package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheel-tracker/internal/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInclusiveCountSameDay(t *testing.T) {
	c := NewBusinessDayCounter(nil)

	// Same day is always 1, even on a weekend.
	monday := day(2026, time.August, 31)
	saturday := day(2026, time.September, 5)

	for _, d := range []time.Time{monday, saturday} {
		count, err := c.InclusiveCount(d, d)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}
}

func TestInclusiveCountFullWeek(t *testing.T) {
	c := NewBusinessDayCounter(nil)

	monday := day(2026, time.August, 31)
	friday := day(2026, time.September, 4)

	count, err := c.InclusiveCount(monday, friday)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestInclusiveCountSkipsWeekend(t *testing.T) {
	c := NewBusinessDayCounter(nil)

	monday := day(2026, time.August, 31)
	nextMonday := day(2026, time.September, 7)

	count, err := c.InclusiveCount(monday, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	// Friday through Monday spans a weekend: only both endpoints count.
	friday := day(2026, time.September, 4)
	count, err = c.InclusiveCount(friday, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInclusiveCountReversedRange(t *testing.T) {
	c := NewBusinessDayCounter(nil)

	_, err := c.InclusiveCount(day(2026, time.September, 4), day(2026, time.August, 31))
	assert.ErrorIs(t, err, errors.ErrInvalidDateRange)
}

func TestInclusiveCountHolidays(t *testing.T) {
	// Tuesday Sep 1 is a holiday: Mon-Fri counts 4.
	c := NewBusinessDayCounter([]time.Time{day(2026, time.September, 1)})

	count, err := c.InclusiveCount(day(2026, time.August, 31), day(2026, time.September, 4))
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestInclusiveCountIgnoresTimeOfDay(t *testing.T) {
	c := NewBusinessDayCounter(nil)

	start := time.Date(2026, time.August, 31, 23, 59, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 1, 0, 1, 0, 0, time.UTC)

	count, err := c.InclusiveCount(start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
