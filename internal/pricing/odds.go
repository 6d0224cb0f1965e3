package pricing

import (
	"fmt"
	"time"

	"wheel-tracker/internal/models"
)

// Cache is the minimal TTL cache the memoized odds lookup needs. Tests can
// substitute a no-op or plain in-memory implementation.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}

// OddsCalculator memoizes the implied-volatility solve behind a shared TTL
// cache. The solve is expensive and repeated for the same contract many times
// within a short window, so results are keyed by the four numeric inputs.
type OddsCalculator struct {
	solver *Solver
	cache  Cache
	ttl    time.Duration
}

// NewOddsCalculator creates a memoizing odds calculator.
func NewOddsCalculator(solver *Solver, cache Cache, ttl time.Duration) *OddsCalculator {
	return &OddsCalculator{solver: solver, cache: cache, ttl: ttl}
}

// OddsOutOfTheMoney returns the memoized probability that the contract
// expires out of the money. Solve failures are not cached; the next identical
// request retries.
func (o *OddsCalculator) OddsOutOfTheMoney(spot, strike float64, daysToExpiry int, optionPrice float64, side models.OptionSide) (float64, error) {
	key := oddsKey(spot, strike, daysToExpiry, optionPrice, side)
	if v, ok := o.cache.Get(key); ok {
		if odds, ok := v.(float64); ok {
			return odds, nil
		}
	}

	odds, err := o.solver.OddsOutOfTheMoney(spot, strike, daysToExpiry, optionPrice, side)
	if err != nil {
		return 0, err
	}

	o.cache.Set(key, odds, o.ttl)
	return odds, nil
}

func oddsKey(spot, strike float64, daysToExpiry int, optionPrice float64, side models.OptionSide) string {
	return fmt.Sprintf("odds:%s:%.4f:%.4f:%d:%.4f", side, spot, strike, daysToExpiry, optionPrice)
}
