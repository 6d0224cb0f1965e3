// Package config provides configuration management for the wheel tracker.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Market   MarketConfig   `mapstructure:"market"`
	Screener ScreenerConfig `mapstructure:"screener"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Provider ProviderConfig `mapstructure:"provider"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// MarketConfig holds market calendar and rate assumptions.
type MarketConfig struct {
	// CloseHour is the local hour (24h) after which today's expirations count
	// as expired.
	CloseHour int `mapstructure:"close_hour"`
	// InterestRate is the annualized risk-free rate as a decimal (0.01 = 1%).
	InterestRate float64 `mapstructure:"interest_rate"`
	// Holidays lists market holidays as YYYY-MM-DD. Empty means weekends-only
	// business day counting.
	Holidays []string `mapstructure:"holidays"`
	Timezone string   `mapstructure:"timezone"`
}

// ScreenerConfig holds candidate screening thresholds. StalenessBand is the
// max fractional deviation of the effective price from the last trade,
// ImpliedVolCeiling routes quotes above it past the memoized odds path, and
// CallWindow is the strike count kept each side of the OTM boundary.
type ScreenerConfig struct {
	MinVolume         float64 `mapstructure:"min_volume"`
	StalenessBand     float64 `mapstructure:"staleness_band"`
	ImpliedVolCeiling float64 `mapstructure:"implied_vol_ceiling"`
	MaxExpiries       int     `mapstructure:"max_expiries"`
	PutsPerExpiry     int     `mapstructure:"puts_per_expiry"`
	CallWindow        int     `mapstructure:"call_window"`
}

// CacheConfig holds the quote cache TTLs.
type CacheConfig struct {
	QuoteTTL    time.Duration `mapstructure:"quote_ttl"`
	EarningsTTL time.Duration `mapstructure:"earnings_ttl"`
	// EarningsFailureTTL bounds how long a failed earnings lookup is cached,
	// so failures retry sooner than confirmed absence.
	EarningsFailureTTL time.Duration `mapstructure:"earnings_failure_ttl"`
}

// ScanConfig holds full-universe scan coordination settings.
type ScanConfig struct {
	// SentinelTTL must cover the expected scan duration; the sentinel is the
	// only thing preventing duplicate scans.
	SentinelTTL time.Duration `mapstructure:"sentinel_ttl"`
	ResultTTL   time.Duration `mapstructure:"result_ttl"`
	Workers     int           `mapstructure:"workers"`
	// Schedule is an optional cron expression for periodic scans, e.g.
	// "0 */10 9-16 * * MON-FRI". Empty disables scheduling.
	Schedule string `mapstructure:"schedule"`
	// Expiries and PerExpiry narrow the per-ticker work during a full scan.
	Expiries  int `mapstructure:"expiries"`
	PerExpiry int `mapstructure:"per_expiry"`
}

// ProviderConfig holds quote feed settings.
type ProviderConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/wheel-tracker"
	}
	return filepath.Join(home, ".config", "wheel-tracker")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DefaultConfigDir()
	return &Config{
		Market: MarketConfig{
			CloseHour:    16,
			InterestRate: 0.01,
			Timezone:     "America/New_York",
		},
		Screener: ScreenerConfig{
			MinVolume:         10,
			StalenessBand:     0.10,
			ImpliedVolCeiling: 4.4,
			MaxExpiries:       10,
			PutsPerExpiry:     3,
			CallWindow:        10,
		},
		Cache: CacheConfig{
			QuoteTTL:           5 * time.Minute,
			EarningsTTL:        7 * 24 * time.Hour,
			EarningsFailureTTL: time.Hour,
		},
		Scan: ScanConfig{
			SentinelTTL: 10 * time.Minute,
			ResultTTL:   10 * time.Minute,
			Workers:     4,
			Expiries:    2,
			PerExpiry:   3,
		},
		Provider: ProviderConfig{
			BaseURL:     "https://query2.finance.yahoo.com",
			Timeout:     15 * time.Second,
			MaxAttempts: 3,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "wheels.db"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       true,
			FilePath:   filepath.Join(dir, "logs", "wheel.log"),
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
	}
}

// Load loads configuration from the specified directory, falling back to
// defaults when no config file exists. If configDir is empty, uses the
// default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := writeTemplate(configDir); err != nil {
				return nil, fmt.Errorf("writing config template: %w", err)
			}
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WHEEL_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("WHEEL_PROVIDER_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("WHEEL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Market.CloseHour < 0 || c.Market.CloseHour > 23 {
		return fmt.Errorf("market close_hour must be between 0 and 23")
	}
	if c.Market.InterestRate < 0 || c.Market.InterestRate > 1 {
		return fmt.Errorf("interest_rate must be a decimal between 0 and 1")
	}
	if c.Screener.MinVolume < 0 {
		return fmt.Errorf("min_volume must be non-negative")
	}
	if c.Screener.StalenessBand <= 0 || c.Screener.StalenessBand >= 1 {
		return fmt.Errorf("staleness_band must be a decimal between 0 and 1")
	}
	if c.Screener.ImpliedVolCeiling <= 0 {
		return fmt.Errorf("implied_vol_ceiling must be positive")
	}
	if c.Screener.MaxExpiries <= 0 || c.Screener.PutsPerExpiry <= 0 || c.Screener.CallWindow <= 0 {
		return fmt.Errorf("screener window sizes must be positive")
	}
	if c.Scan.SentinelTTL <= 0 || c.Scan.ResultTTL <= 0 {
		return fmt.Errorf("scan TTLs must be positive")
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan workers must be positive")
	}
	for _, h := range c.Market.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return fmt.Errorf("invalid holiday %q: use YYYY-MM-DD", h)
		}
	}
	return nil
}

// HolidayDates parses the configured holiday list.
func (c *Config) HolidayDates() []time.Time {
	dates := make([]time.Time, 0, len(c.Market.Holidays))
	for _, h := range c.Market.Holidays {
		if d, err := time.Parse("2006-01-02", h); err == nil {
			dates = append(dates, d)
		}
	}
	return dates
}

// Location resolves the configured market timezone, falling back to a fixed
// Eastern offset when tzdata is unavailable.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return time.FixedZone("ET", -5*60*60)
	}
	return loc
}
