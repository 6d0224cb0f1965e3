package quotecache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wheel-tracker/internal/errors"
	"wheel-tracker/internal/marketdata"
	"wheel-tracker/internal/models"
)

// Options holds the sub-cache TTLs.
type Options struct {
	QuoteTTL           time.Duration
	EarningsTTL        time.Duration
	EarningsFailureTTL time.Duration
}

// DefaultOptions returns the standard TTLs: five minutes for anything priced,
// a week for confirmed earnings facts.
func DefaultOptions() Options {
	return Options{
		QuoteTTL:           5 * time.Minute,
		EarningsTTL:        7 * 24 * time.Hour,
		EarningsFailureTTL: time.Hour,
	}
}

// CachedQuoter fronts the quote provider with the shared TTL cache. It is the
// only thing between the rate-limited feed and every screener request, so all
// reads go through it.
type CachedQuoter struct {
	provider marketdata.Provider
	cache    Cache
	opts     Options
	logger   zerolog.Logger
}

// NewCachedQuoter creates a caching wrapper around provider.
func NewCachedQuoter(provider marketdata.Provider, cache Cache, opts Options, logger zerolog.Logger) *CachedQuoter {
	return &CachedQuoter{
		provider: provider,
		cache:    cache,
		opts:     opts,
		logger:   logger.With().Str("component", "quoter").Logger(),
	}
}

// Cache exposes the underlying cache for collaborators that share it (the
// odds memo, the scan sentinel).
func (q *CachedQuoter) Cache() Cache {
	return q.cache
}

// recentCloses returns the two most recent trading-day closes, oldest first.
func (q *CachedQuoter) recentCloses(ctx context.Context, symbol string) ([]models.ClosePrice, error) {
	key := "closes:" + symbol
	if v, ok := q.cache.Get(key); ok {
		if closes, ok := v.([]models.ClosePrice); ok {
			return closes, nil
		}
	}

	closes, err := q.provider.RecentCloses(ctx, symbol, 2)
	if err != nil {
		return nil, err
	}
	if len(closes) == 0 {
		return nil, errors.NewProviderError("closes", symbol, errors.ErrNoData)
	}
	q.cache.Set(key, closes, q.opts.QuoteTTL)
	return closes, nil
}

// CurrentPrice returns the most recent close for symbol.
func (q *CachedQuoter) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	closes, err := q.recentCloses(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return closes[len(closes)-1].Price, nil
}

// PreviousClose returns the close before the most recent one, or the single
// available close when the feed only has one.
func (q *CachedQuoter) PreviousClose(ctx context.Context, symbol string) (float64, error) {
	closes, err := q.recentCloses(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if len(closes) >= 2 {
		return closes[len(closes)-2].Price, nil
	}
	return closes[0].Price, nil
}

// ChangeToday returns the absolute and relative price change against the
// previous close.
func (q *CachedQuoter) ChangeToday(ctx context.Context, symbol string) (change, percent float64, err error) {
	closes, err := q.recentCloses(ctx, symbol)
	if err != nil {
		return 0, 0, err
	}
	current := closes[len(closes)-1].Price
	previous := current
	if len(closes) >= 2 {
		previous = closes[len(closes)-2].Price
	}
	if current == 0 {
		return 0, 0, nil
	}
	return current - previous, (current - previous) / current, nil
}

// Expiries returns the nearest option expiry dates, at most limit. Provider
// failures cache nothing, so the next request retries immediately.
func (q *CachedQuoter) Expiries(ctx context.Context, symbol string, limit int) ([]time.Time, error) {
	key := fmt.Sprintf("expiries:%s:%d", symbol, limit)
	if v, ok := q.cache.Get(key); ok {
		if expiries, ok := v.([]time.Time); ok {
			return expiries, nil
		}
	}

	expiries, err := q.provider.AvailableExpiries(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	q.cache.Set(key, expiries, q.opts.QuoteTTL)
	return expiries, nil
}

// Chain returns one side of the option chain for symbol at expiry.
func (q *CachedQuoter) Chain(ctx context.Context, symbol string, expiry time.Time, side models.OptionSide) ([]models.OptionQuote, error) {
	key := fmt.Sprintf("chain:%s:%s:%s", symbol, expiry.Format("2006-01-02"), side)
	if v, ok := q.cache.Get(key); ok {
		if chain, ok := v.([]models.OptionQuote); ok {
			return chain, nil
		}
	}

	chain, err := q.provider.OptionChain(ctx, symbol, expiry, side)
	if err != nil {
		return nil, err
	}
	q.cache.Set(key, chain, q.opts.QuoteTTL)
	return chain, nil
}

// earningsEntry distinguishes a confirmed "no earnings scheduled" from a
// failed lookup, so failures are retried sooner than confirmed absence.
type earningsEntry struct {
	date   time.Time
	ok     bool
	failed bool
}

// NextEarnings returns the next future earnings date for symbol. ok=false
// with a nil error means the provider confirmed there is none scheduled.
func (q *CachedQuoter) NextEarnings(ctx context.Context, symbol string) (time.Time, bool, error) {
	key := "earnings:" + symbol
	if v, ok := q.cache.Get(key); ok {
		if e, ok := v.(earningsEntry); ok {
			if e.failed {
				return time.Time{}, false, errors.NewProviderError("earnings", symbol, errors.ErrProviderUnavailable)
			}
			return e.date, e.ok, nil
		}
	}

	date, ok, err := q.provider.NextEarningsDate(ctx, symbol)
	if err != nil {
		q.cache.Set(key, earningsEntry{failed: true}, q.opts.EarningsFailureTTL)
		return time.Time{}, false, err
	}
	q.cache.Set(key, earningsEntry{date: date, ok: ok}, q.opts.EarningsTTL)
	return date, ok, nil
}
