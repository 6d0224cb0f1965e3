// Package cli provides the command-line interface for the wheel tracker.
package cli

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wheel-tracker/internal/calendar"
	"wheel-tracker/internal/config"
	apperrors "wheel-tracker/internal/errors"
	"wheel-tracker/internal/jobs"
	"wheel-tracker/internal/ledger"
	"wheel-tracker/internal/logging"
	"wheel-tracker/internal/marketdata"
	"wheel-tracker/internal/pricing"
	"wheel-tracker/internal/quotecache"
	"wheel-tracker/internal/scan"
	"wheel-tracker/internal/screener"
	"wheel-tracker/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-01-01"
)

// App holds the application dependencies.
type App struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Store       store.DataStore
	Quoter      *quotecache.CachedQuoter
	Screener    *screener.Screener
	Ledger      *ledger.Ledger
	Coordinator *scan.Coordinator
	Pool        *jobs.Pool
	Scheduler   *scan.Scheduler
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Everything downstream of the provider shares one TTL cache: quotes,
	// the odds memo, and the scan sentinel.
	cache := quotecache.NewMemoryCache()

	provider := marketdata.NewYahooProvider(marketdata.YahooConfig{
		BaseURL:     cfg.Provider.BaseURL,
		Timeout:     cfg.Provider.Timeout,
		MaxAttempts: cfg.Provider.MaxAttempts,
	}, logger)

	app.Quoter = quotecache.NewCachedQuoter(provider, cache, quotecache.Options{
		QuoteTTL:           cfg.Cache.QuoteTTL,
		EarningsTTL:        cfg.Cache.EarningsTTL,
		EarningsFailureTTL: cfg.Cache.EarningsFailureTTL,
	}, logger)

	solver := pricing.NewSolver(cfg.Market.InterestRate)
	odds := pricing.NewOddsCalculator(solver, cache, cfg.Cache.QuoteTTL)
	counter := calendar.NewBusinessDayCounter(cfg.HolidayDates())

	app.Screener = screener.New(app.Quoter, solver, odds, counter, screener.Config{
		MinVolume:         cfg.Screener.MinVolume,
		StalenessBand:     cfg.Screener.StalenessBand,
		ImpliedVolCeiling: cfg.Screener.ImpliedVolCeiling,
		CallWindow:        cfg.Screener.CallWindow,
	}, logger)

	app.Ledger = ledger.New(app.Quoter, counter, cfg.Market.CloseHour, cfg.Location(), logger)

	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store initialized")
	}

	app.Pool = jobs.NewPool(cfg.Scan.Workers)
	if app.Store != nil {
		app.Coordinator = scan.NewCoordinator(app.Screener, app.Store, app.Pool, cache, scan.Config{
			SentinelTTL: cfg.Scan.SentinelTTL,
			ResultTTL:   cfg.Scan.ResultTTL,
			Expiries:    cfg.Scan.Expiries,
			PerExpiry:   cfg.Scan.PerExpiry,
		}, logger)
	}
	app.Scheduler = scan.NewScheduler(logger)

	rootCmd := &cobra.Command{
		Use:   "wheel",
		Short: "Options wheel strategy tracker",
		Long: `Wheel tracks the options wheel strategy: sell cash-secured puts, and if
assigned, sell covered calls until the shares are called away.

It screens option chains for high-annualized-return candidates, records each
leg you sell, and keeps the running cost basis and profit of every position.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/wheel-tracker)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addScreenCommands(rootCmd, app)
	addScanCommands(rootCmd, app)
	addWheelCommands(rootCmd, app)
	addTickerCommands(rootCmd, app)
	addQuoteCommands(rootCmd, app)
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version, "build_date": BuildDate})
				return
			}
			output.Printf("wheel %s (built %s)\n", Version, BuildDate)
		},
	}
}

// errStoreUnavailable is returned by commands that need persistence when the
// database failed to open.
var errStoreUnavailable = apperrors.ErrDatabaseError

// errScanTimeout is returned when a foreground scan outlives its sentinel.
var errScanTimeout = apperrors.ErrScanRunning

// errInvalidFlag is returned for flag values that fail validation.
var errInvalidFlag = errors.New("invalid flag value")

// requireStore returns the data store or a user-facing error.
func (app *App) requireStore(output *Output) bool {
	if app.Store == nil {
		output.Error("Database unavailable. Check the path in config.toml or WHEEL_DB_PATH.")
		return false
	}
	return true
}
