package utils

import "time"

// EasternLocation is the timezone for US equity markets.
var EasternLocation *time.Location

func init() {
	var err error
	EasternLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		EasternLocation = time.FixedZone("ET", -5*60*60)
	}
}

// IsMarketOpen reports whether the US equity market is in its regular session
// (9:30-16:00 ET, weekdays). Holidays are not modeled here; the quote feed
// simply returns stale data on them.
func IsMarketOpen(now time.Time) bool {
	et := now.In(EasternLocation)
	if et.Weekday() == time.Saturday || et.Weekday() == time.Sunday {
		return false
	}
	minutes := et.Hour()*60 + et.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}

// NextFriday returns the next Friday strictly after now, the default weekly
// option expiration to suggest for a new leg.
func NextFriday(now time.Time) time.Time {
	days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	next := now.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, now.Location())
}
