// Package scan coordinates the expensive all-ticker scan so at most one runs
// system-wide at a time.
package scan

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"wheel-tracker/internal/logging"
	"wheel-tracker/internal/models"
	"wheel-tracker/internal/screener"
)

const (
	sentinelKey = "scan:all:running"
	resultsKey  = "scan:all:results"
)

// SentinelCache is the cache surface the coordinator needs: plain TTL
// storage plus an atomic check-and-set for the sentinel.
type SentinelCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	SetIfAbsent(key string, value interface{}, ttl time.Duration) bool
}

// Runner executes a unit of work asynchronously. The jobs pool satisfies it.
type Runner interface {
	Submit(task func()) bool
}

// TickerSource lists the tracked tickers to scan. The data store satisfies it.
type TickerSource interface {
	ListTickers(ctx context.Context) ([]models.Ticker, error)
}

// Config holds scan coordination settings.
type Config struct {
	// SentinelTTL is the soft lock's lifetime. It must cover the expected
	// scan duration: a sentinel that expires mid-scan lets a duplicate scan
	// start. Duplicates are harmless but wasteful.
	SentinelTTL time.Duration
	ResultTTL   time.Duration
	Expiries    int
	PerExpiry   int
}

// Coordinator guarantees at most one all-ticker scan in flight via a TTL
// sentinel entry in the shared cache. This is a soft lock, not a mutex: the
// tolerance for a rare duplicate scan is part of the design.
type Coordinator struct {
	screener *screener.Screener
	tickers  TickerSource
	runner   Runner
	cache    SentinelCache
	cfg      Config
	logger   zerolog.Logger
}

// NewCoordinator creates a scan coordinator sharing the quote cache.
func NewCoordinator(scr *screener.Screener, tickers TickerSource, runner Runner, cache SentinelCache, cfg Config, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		screener: scr,
		tickers:  tickers,
		runner:   runner,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.With().Str("component", "scan").Logger(),
	}
}

// Schedule requests an all-ticker scan. If one is already running the request
// succeeds without enqueuing a duplicate; started reports whether this call
// enqueued new work.
func (c *Coordinator) Schedule() (started bool) {
	if !c.cache.SetIfAbsent(sentinelKey, true, c.cfg.SentinelTTL) {
		c.logger.Debug().Msg("Scan already running, not enqueuing")
		return false
	}

	if !c.runner.Submit(c.runScan) {
		// The queue was full; the sentinel expires on its own and the next
		// request retries.
		c.logger.Warn().Msg("Scan enqueue failed, job queue full")
		return false
	}
	return true
}

// Results returns the most recent completed scan, ranked best first, or
// false when no scan has completed within the result TTL.
func (c *Coordinator) Results() ([]models.OptionStat, bool) {
	v, ok := c.cache.Get(resultsKey)
	if !ok {
		return nil, false
	}
	stats, ok := v.([]models.OptionStat)
	return stats, ok
}

// runScan ranks puts for every tracked ticker and caches the merged ranking.
// The scan is bounded by the sentinel TTL so a hung provider cannot hold the
// soft lock past its expiry.
func (c *Coordinator) runScan() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SentinelTTL)
	defer cancel()

	tickers, err := c.tickers.ListTickers(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Scan aborted, cannot list tickers")
		return
	}

	var all []models.OptionStat
	for _, ticker := range tickers {
		stats, err := c.screener.RankPuts(ctx, ticker.Symbol, c.cfg.Expiries, c.cfg.PerExpiry)
		if err != nil {
			// Unavailable tickers are skipped; the scan is best effort.
			c.logger.Debug().Err(err).Str("symbol", ticker.Symbol).Msg("Ticker skipped during scan")
			continue
		}
		all = append(all, stats...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].AnnualizedReturn > all[j].AnnualizedReturn
	})

	c.cache.Set(resultsKey, all, c.cfg.ResultTTL)
	logging.LogScan(c.logger, "completed", len(tickers), len(all), time.Since(start))
}
