// Package screener filters and ranks option-chain rows into tradable
// candidates for the wheel strategy.
package screener

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"wheel-tracker/internal/calendar"
	"wheel-tracker/internal/logging"
	"wheel-tracker/internal/models"
	"wheel-tracker/internal/pricing"
	"wheel-tracker/internal/quotecache"
	"wheel-tracker/internal/returns"
)

// RejectReason names why a candidate was dropped. Rejections are data-quality
// filtering, not errors; they are logged at debug and omitted from output.
type RejectReason string

const (
	RejectLowVolume   RejectReason = "low_volume"
	RejectZeroIV      RejectReason = "zero_implied_volatility"
	RejectNoPrice     RejectReason = "no_effective_price"
	RejectNoIntrinsic RejectReason = "no_intrinsic_value"
	RejectStaleQuote  RejectReason = "stale_quote"
	RejectUnpriceable RejectReason = "unpriceable"
)

// Config holds screening thresholds. Values come from config; defaults match
// the free-feed reality the screen was tuned against.
type Config struct {
	// MinVolume rejects contracts too thin for the feed's prices to be real.
	MinVolume float64
	// StalenessBand rejects effective prices deviating more than this from
	// the last trade.
	StalenessBand float64
	// ImpliedVolCeiling routes quotes above it to the bounded solver.
	ImpliedVolCeiling float64
	// CallWindow is the strike count each side of the OTM boundary when
	// ranking calls.
	CallWindow int
}

// DefaultConfig returns the standard screen thresholds.
func DefaultConfig() Config {
	return Config{
		MinVolume:         10,
		StalenessBand:     0.10,
		ImpliedVolCeiling: pricing.ImpliedVolCeiling,
		CallWindow:        10,
	}
}

// Screener turns raw option chains into ranked OptionStat candidates.
type Screener struct {
	quoter  *quotecache.CachedQuoter
	solver  *pricing.Solver
	odds    *pricing.OddsCalculator
	counter *calendar.BusinessDayCounter
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a screener. The solver is used directly for quotes above the
// volatility ceiling; everything else goes through the memoized odds lookup.
func New(quoter *quotecache.CachedQuoter, solver *pricing.Solver, odds *pricing.OddsCalculator,
	counter *calendar.BusinessDayCounter, cfg Config, logger zerolog.Logger) *Screener {
	return &Screener{
		quoter:  quoter,
		solver:  solver,
		odds:    odds,
		counter: counter,
		cfg:     cfg,
		logger:  logger.With().Str("component", "screener").Logger(),
		now:     time.Now,
	}
}

// RankPuts ranks cash-secured put candidates for symbol across the nearest
// maxExpiries expiry dates, keeping the perExpiry highest strikes still out
// of the money on each date. The result is sorted by annualized return,
// best first. Unavailable expiries are skipped, not fatal.
func (s *Screener) RankPuts(ctx context.Context, symbol string, maxExpiries, perExpiry int) ([]models.OptionStat, error) {
	currentPrice, err := s.quoter.CurrentPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	expiries, err := s.quoter.Expiries(ctx, symbol, maxExpiries)
	if err != nil {
		return nil, err
	}

	earnings, hasEarnings := s.earningsDate(ctx, symbol)

	var stats []models.OptionStat
	for _, expiry := range expiries {
		chain, err := s.quoter.Chain(ctx, symbol, expiry, models.SidePut)
		if err != nil {
			continue
		}

		days, ok := s.daysToExpiry(expiry)
		if !ok {
			continue
		}

		// The boundary is the first strike above spot. The candidates worth
		// selling are the highest strikes still below it: maximum premium
		// without going in the money.
		boundary := otmBoundary(chain, currentPrice)
		lo := boundary - perExpiry
		if lo < 0 {
			lo = 0
		}
		for _, quote := range chain[lo:boundary] {
			stat, reason := s.screenPut(symbol, currentPrice, quote, days)
			if stat == nil {
				logging.LogScreenReject(s.logger, symbol, quote.Strike, string(reason))
				continue
			}
			stat.Expiration = expiry
			if hasEarnings && !earnings.After(expiry) {
				stat.IncludesEarnings = true
			}
			stats = append(stats, *stat)
		}
	}

	sortByAnnualized(stats)
	return stats, nil
}

// RankCalls ranks covered-call candidates for a wheel that already holds the
// stock. The window straddles the OTM boundary: in-the-money strikes that
// ensure assignment and out-of-the-money strikes that keep the shares.
// daysActiveSoFar, revenue and collateral describe the wheel to date, so the
// ranking reflects whole-position economics rather than this leg alone.
func (s *Screener) RankCalls(ctx context.Context, symbol string, daysActiveSoFar int, revenue, collateral float64, maxExpiries int) ([]models.OptionStat, error) {
	currentPrice, err := s.quoter.CurrentPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	expiries, err := s.quoter.Expiries(ctx, symbol, maxExpiries)
	if err != nil {
		return nil, err
	}

	earnings, hasEarnings := s.earningsDate(ctx, symbol)

	var stats []models.OptionStat
	for _, expiry := range expiries {
		chain, err := s.quoter.Chain(ctx, symbol, expiry, models.SideCall)
		if err != nil {
			continue
		}

		days, ok := s.daysToExpiry(expiry)
		if !ok {
			continue
		}

		boundary := otmBoundary(chain, currentPrice)
		lo := boundary - s.cfg.CallWindow
		if lo < 0 {
			lo = 0
		}
		hi := boundary + s.cfg.CallWindow
		if hi > len(chain) {
			hi = len(chain)
		}
		for _, quote := range chain[lo:hi] {
			stat, reason := s.screenCall(symbol, currentPrice, quote, days, daysActiveSoFar, revenue, collateral)
			if stat == nil {
				logging.LogScreenReject(s.logger, symbol, quote.Strike, string(reason))
				continue
			}
			stat.Expiration = expiry
			if hasEarnings && !earnings.After(expiry) {
				stat.IncludesEarnings = true
			}
			stats = append(stats, *stat)
		}
	}

	sortByAnnualized(stats)
	return stats, nil
}

// screenPut applies the data-quality screen to one put row. The first failing
// check drops the candidate.
func (s *Screener) screenPut(symbol string, currentPrice float64, quote models.OptionQuote, days int) (*models.OptionStat, RejectReason) {
	price, reason := s.screenCommon(quote)
	if reason != "" {
		return nil, reason
	}

	// If the strike exceeds spot plus premium it would be cheaper to buy the
	// stock outright; the quote is not legitimate.
	if quote.Strike > currentPrice*0.99+price {
		return nil, RejectNoIntrinsic
	}
	if s.stale(price, quote.LastPrice) {
		return nil, RejectStaleQuote
	}

	odds, err := s.oddsOutOfTheMoney(currentPrice, quote, days, price, models.SidePut)
	if err != nil || !usableOdds(odds) {
		return nil, RejectUnpriceable
	}

	maxProfit := price / quote.Strike
	return &models.OptionStat{
		Symbol:           symbol,
		Side:             models.SidePut,
		Strike:           quote.Strike,
		Price:            price,
		DaysToExpiry:     days,
		MaxProfitDecimal: maxProfit,
		OddsOutOfMoney:   odds,
		AnnualizedReturn: returns.Annualize(maxProfit, odds, days, 0),
	}, ""
}

// screenCall applies the same screen to one call row and layers on the
// whole-wheel economics.
func (s *Screener) screenCall(symbol string, currentPrice float64, quote models.OptionQuote, days, daysActiveSoFar int, revenue, collateral float64) (*models.OptionStat, RejectReason) {
	price, reason := s.screenCommon(quote)
	if reason != "" {
		return nil, reason
	}

	// Selling the stock outright would beat this call; not a real quote.
	if quote.Strike+price < currentPrice*1.01 {
		return nil, RejectNoIntrinsic
	}
	if s.stale(price, quote.LastPrice) {
		return nil, RejectStaleQuote
	}

	odds, err := s.oddsOutOfTheMoney(currentPrice, quote, days, price, models.SideCall)
	if err != nil || !usableOdds(odds) {
		return nil, RejectUnpriceable
	}

	callOnly := returns.CallOnlyProfit(quote.Strike, price, currentPrice)
	wheel := callOnly
	totalDays := days
	if collateral > 0 {
		wheel = returns.WheelProfit(quote.Strike, collateral, price, revenue)
		totalDays = daysActiveSoFar + days
	}

	maxProfit := price / quote.Strike
	return &models.OptionStat{
		Symbol:            symbol,
		Side:              models.SideCall,
		Strike:            quote.Strike,
		Price:             price,
		DaysToExpiry:      days,
		MaxProfitDecimal:  maxProfit,
		OddsOutOfMoney:    odds,
		AnnualizedReturn:  returns.Annualize(wheel, odds, totalDays, 0),
		CallOnlyMaxProfit: callOnly,
		WheelMaxProfit:    wheel,
	}, ""
}

// screenCommon runs the side-independent checks and returns the effective
// price used for all downstream math.
func (s *Screener) screenCommon(quote models.OptionQuote) (float64, RejectReason) {
	if math.IsNaN(quote.Volume) || quote.Volume < s.cfg.MinVolume {
		return 0, RejectLowVolume
	}
	if quote.ImpliedVolatility == 0 {
		return 0, RejectZeroIV
	}

	// Bid and ask are both zero off hours, so fall back to the last trade.
	// During market hours assume the worst-case fill at the bid.
	price := quote.LastPrice
	if quote.Bid > 0 {
		price = quote.Bid
	}
	if price == 0 || math.IsNaN(price) {
		return 0, RejectNoPrice
	}

	return price, ""
}

// stale reports an effective price that drifted too far from the last trade,
// meaning the quote went stale.
func (s *Screener) stale(price, lastPrice float64) bool {
	if lastPrice <= 0 {
		return false
	}
	return math.Abs(price-lastPrice)/lastPrice > s.cfg.StalenessBand
}

// oddsOutOfTheMoney selects the solve path. Quotes above the volatility
// ceiling are the regime where a conventional solver loses convergence, so
// they go straight to the bounded Newton-Raphson solve; everything else uses
// the memoized lookup.
func (s *Screener) oddsOutOfTheMoney(spot float64, quote models.OptionQuote, days int, price float64, side models.OptionSide) (float64, error) {
	if quote.ImpliedVolatility > s.cfg.ImpliedVolCeiling {
		return s.solver.OddsOutOfTheMoney(spot, quote.Strike, days, price, side)
	}
	return s.odds.OddsOutOfTheMoney(spot, quote.Strike, days, price, side)
}

func (s *Screener) earningsDate(ctx context.Context, symbol string) (time.Time, bool) {
	date, ok, err := s.quoter.NextEarnings(ctx, symbol)
	if err != nil || !ok {
		return time.Time{}, false
	}
	return date, true
}

// daysToExpiry counts trading days from today through expiry inclusive.
// Already-expired dates are skipped by the caller.
func (s *Screener) daysToExpiry(expiry time.Time) (int, bool) {
	days, err := s.counter.InclusiveCount(s.now(), expiry)
	if err != nil {
		return 0, false
	}
	return days, true
}

// otmBoundary returns the index of the first strike above spot. Rows are
// sorted by strike ascending.
func otmBoundary(chain []models.OptionQuote, spot float64) int {
	return sort.Search(len(chain), func(i int) bool {
		return chain[i].Strike > spot
	})
}

func usableOdds(odds float64) bool {
	return !math.IsNaN(odds) && !math.IsInf(odds, 0) && odds > 0 && odds <= 1
}

func sortByAnnualized(stats []models.OptionStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].AnnualizedReturn > stats[j].AnnualizedReturn
	})
}
