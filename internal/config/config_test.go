package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"close hour out of range", func(c *Config) { c.Market.CloseHour = 24 }},
		{"negative interest rate", func(c *Config) { c.Market.InterestRate = -0.01 }},
		{"staleness band too wide", func(c *Config) { c.Screener.StalenessBand = 1.0 }},
		{"zero vol ceiling", func(c *Config) { c.Screener.ImpliedVolCeiling = 0 }},
		{"zero expiries", func(c *Config) { c.Screener.MaxExpiries = 0 }},
		{"zero sentinel TTL", func(c *Config) { c.Scan.SentinelTTL = 0 }},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }},
		{"malformed holiday", func(c *Config) { c.Market.Holidays = []string{"Jan 1"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadWritesTemplateWhenMissing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default().Market.CloseHour, cfg.Market.CloseHour)

	// The template lands on disk for the user to edit.
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

func TestLoadReadsOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
[market]
close_hour = 15
interest_rate = 0.02

[screener]
min_volume = 25.0

[cache]
quote_ttl = "2m"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Market.CloseHour)
	assert.Equal(t, 0.02, cfg.Market.InterestRate)
	assert.Equal(t, 25.0, cfg.Screener.MinVolume)
	assert.Equal(t, 2*time.Minute, cfg.Cache.QuoteTTL)

	// Unset keys keep their defaults.
	assert.Equal(t, Default().Screener.StalenessBand, cfg.Screener.StalenessBand)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WHEEL_DB_PATH", "/tmp/override.db")
	t.Setenv("WHEEL_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestHolidayDates(t *testing.T) {
	cfg := Default()
	cfg.Market.Holidays = []string{"2026-01-01", "2026-07-03"}

	dates := cfg.HolidayDates()
	require.Len(t, dates, 2)
	assert.Equal(t, time.January, dates[0].Month())
	assert.Equal(t, time.July, dates[1].Month())
}
