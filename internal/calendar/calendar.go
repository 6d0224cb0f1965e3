// Package calendar provides trading-day arithmetic.
package calendar

import (
	"time"

	"wheel-tracker/internal/errors"
)

// BusinessDayCounter counts trading days. Weekends are never trading days;
// holidays are excluded only when a calendar is supplied, since holiday
// accuracy is a policy choice rather than a hard requirement.
type BusinessDayCounter struct {
	holidays map[string]struct{}
}

// NewBusinessDayCounter creates a counter with an optional holiday calendar.
func NewBusinessDayCounter(holidays []time.Time) *BusinessDayCounter {
	c := &BusinessDayCounter{}
	if len(holidays) > 0 {
		c.holidays = make(map[string]struct{}, len(holidays))
		for _, h := range holidays {
			c.holidays[dayKey(h)] = struct{}{}
		}
	}
	return c
}

// InclusiveCount counts weekdays between start and end, including both
// endpoints. start == end always returns 1, even on a weekend. start after
// end is a caller bug and fails loudly.
func (c *BusinessDayCounter) InclusiveCount(start, end time.Time) (int, error) {
	start = truncateDay(start)
	end = truncateDay(end)

	if start.After(end) {
		return 0, errors.ErrInvalidDateRange
	}
	if start.Equal(end) {
		return 1, nil
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.isTradingDay(d) {
			count++
		}
	}
	return count, nil
}

func (c *BusinessDayCounter) isTradingDay(d time.Time) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	if c.holidays != nil {
		if _, ok := c.holidays[dayKey(d)]; ok {
			return false
		}
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
