package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheel-tracker/internal/errors"
	"wheel-tracker/internal/models"
)

// fairPrice prices a contract at a known volatility so the solver can be
// checked against the volatility that generated the price.
func fairPrice(sigma, spot, strike, rate float64, days int, side models.OptionSide) float64 {
	t := float64(days) / DaysPerYear
	d1, d2 := D1D2(sigma, spot, strike, rate, t)
	if side == models.SideCall {
		return CallPrice(spot, strike, rate, t, d1, d2)
	}
	return PutPrice(spot, strike, rate, t, d1, d2)
}

func TestSolveRecoversKnownVolatility(t *testing.T) {
	s := NewSolver(0.01)

	price := fairPrice(0.30, 100, 95, s.InterestRate, 30, models.SidePut)
	res, err := s.Solve(100, 95, 30, price, models.SidePut)
	require.NoError(t, err)

	assert.InDelta(t, 0.30, res.ImpliedVolatility, 0.01)
	assert.Greater(t, res.Delta, -1.0)
	assert.Less(t, res.Delta, 0.0)
}

func TestSolveCallDelta(t *testing.T) {
	s := NewSolver(0.01)

	price := fairPrice(0.45, 100, 110, s.InterestRate, 45, models.SideCall)
	res, err := s.Solve(100, 110, 45, price, models.SideCall)
	require.NoError(t, err)

	assert.InDelta(t, 0.45, res.ImpliedVolatility, 0.01)
	assert.Greater(t, res.Delta, 0.0)
	assert.Less(t, res.Delta, 1.0)
}

func TestSolveRejectsBadInputs(t *testing.T) {
	s := NewSolver(0.01)

	cases := []struct {
		name                string
		spot, strike, price float64
		days                int
	}{
		{"zero spot", 0, 100, 1, 30},
		{"zero strike", 100, 0, 1, 30},
		{"zero days", 100, 100, 1, 0},
		{"zero price", 100, 100, 0, 30},
		{"negative price", 100, 100, -1, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Solve(tc.spot, tc.strike, tc.days, tc.price, models.SidePut)
			assert.ErrorIs(t, err, errors.ErrNotConverged)

			var solveErr *errors.SolveError
			assert.ErrorAs(t, err, &solveErr)
		})
	}
}

func TestSolveDegenerateVega(t *testing.T) {
	s := NewSolver(0.01)

	// A far out-of-the-money one-day contract has essentially no vega at
	// the initial guess; the Newton step cannot move.
	_, err := s.Solve(100, 500, 1, 0.01, models.SideCall)
	assert.ErrorIs(t, err, errors.ErrNotConverged)
}

func TestOddsOutOfTheMoney(t *testing.T) {
	s := NewSolver(0.01)

	// An out-of-the-money put should usually stay out of the money.
	price := fairPrice(0.30, 100, 90, s.InterestRate, 30, models.SidePut)
	odds, err := s.OddsOutOfTheMoney(100, 90, 30, price, models.SidePut)
	require.NoError(t, err)
	assert.Greater(t, odds, 0.5)
	assert.LessOrEqual(t, odds, 1.0)

	// Same contract viewed as a call is likely to finish in the money,
	// and the two probabilities partition: P(put OTM) = 1 - P(call OTM)
	// only at the same strike, which this is.
	callPrice := fairPrice(0.30, 100, 90, s.InterestRate, 30, models.SideCall)
	callOdds, err := s.OddsOutOfTheMoney(100, 90, 30, callPrice, models.SideCall)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, odds+callOdds, 0.02)
}

// stubCache counts traffic through the memoized odds path.
type stubCache struct {
	entries map[string]interface{}
	gets    int
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]interface{})}
}

func (c *stubCache) Get(key string) (interface{}, bool) {
	c.gets++
	v, ok := c.entries[key]
	return v, ok
}

func (c *stubCache) Set(key string, value interface{}, ttl time.Duration) {
	c.sets++
	c.entries[key] = value
}

func TestOddsCalculatorMemoizes(t *testing.T) {
	s := NewSolver(0.01)
	cache := newStubCache()
	calc := NewOddsCalculator(s, cache, 5*time.Minute)

	price := fairPrice(0.30, 100, 95, s.InterestRate, 30, models.SidePut)

	first, err := calc.OddsOutOfTheMoney(100, 95, 30, price, models.SidePut)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// A repeat with identical inputs is served from the memo.
	second, err := calc.OddsOutOfTheMoney(100, 95, 30, price, models.SidePut)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)

	// The memoized value is authoritative, whatever the solver would say.
	cache.entries[oddsKey(100, 95, 30, price, models.SidePut)] = 0.77
	got, err := calc.OddsOutOfTheMoney(100, 95, 30, price, models.SidePut)
	require.NoError(t, err)
	assert.Equal(t, 0.77, got)
}

func TestOddsCalculatorDoesNotCacheFailures(t *testing.T) {
	s := NewSolver(0.01)
	cache := newStubCache()
	calc := NewOddsCalculator(s, cache, 5*time.Minute)

	_, err := calc.OddsOutOfTheMoney(0, 95, 30, 1.0, models.SidePut)
	assert.Error(t, err)
	assert.Equal(t, 0, cache.sets)
}
