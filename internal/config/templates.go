package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Wheel Tracker Configuration

[market]
# Local hour (24h, market timezone) after which today's expirations count as expired
close_hour = 16
# Annualized risk-free rate as a decimal
interest_rate = 0.01
# Market timezone
timezone = "America/New_York"
# Market holidays (YYYY-MM-DD). Leave empty for weekends-only counting.
holidays = []

[screener]
# Contracts with volume below this are treated as unreliable quotes
min_volume = 10.0
# Reject candidates whose effective price deviates more than this from the last trade
staleness_band = 0.10
# Quoted implied volatility above this uses the bounded Newton-Raphson solver
implied_vol_ceiling = 4.4
# Number of nearest expiry dates to consider
max_expiries = 10
# Highest OTM puts per expiry to evaluate
puts_per_expiry = 3
# Strikes each side of the OTM boundary for call ranking
call_window = 10

[cache]
quote_ttl = "5m"
earnings_ttl = "168h"
earnings_failure_ttl = "1h"

[scan]
# Must cover the expected scan duration; prevents duplicate scans
sentinel_ttl = "10m"
result_ttl = "10m"
workers = 4
# Optional cron expression for periodic scans (empty disables)
schedule = ""
expiries = 2
per_expiry = 3

[provider]
base_url = "https://query2.finance.yahoo.com"
timeout = "15s"
max_attempts = 3

[database]
# path = "~/.config/wheel-tracker/wheels.db"

[logging]
level = "info"
console = true
file = true
max_size = 100
max_backups = 7
max_age = 30
`

// writeTemplate writes a starter config.toml so users have something to edit.
func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
