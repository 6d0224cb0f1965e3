package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"wheel-tracker/internal/models"
)

// Property: for any contract priced by the model at a known volatility, a
// successful solve must return values inside their mathematical bounds:
// - implied volatility: positive
// - put delta: [-1, 0], call delta: [0, 1]
// - odds of expiring out of the money: (0, 1]
// Failed solves are acceptable (deep in/out of the money contracts lose
// vega); out-of-bounds successes are not.
func TestProperty_SolveWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	solver := NewSolver(0.01)

	properties.Property("solved volatility, delta, and odds stay in bounds", prop.ForAll(
		func(spot, moneyness, sigma float64, days int, isCall bool) bool {
			strike := spot * moneyness
			side := models.SidePut
			if isCall {
				side = models.SideCall
			}

			price := fairPrice(sigma, spot, strike, solver.InterestRate, days, side)
			if price <= 0 {
				return true // worthless contract, nothing to solve
			}

			res, err := solver.Solve(spot, strike, days, price, side)
			if err != nil {
				return true // non-convergence is allowed, NaN is not
			}

			if res.ImpliedVolatility <= 0 {
				return false
			}
			if side == models.SideCall {
				if res.Delta < 0 || res.Delta > 1 {
					return false
				}
			} else {
				if res.Delta < -1 || res.Delta > 0 {
					return false
				}
			}

			odds, err := solver.OddsOutOfTheMoney(spot, strike, days, price, side)
			if err != nil {
				return true
			}
			return odds > 0 && odds <= 1
		},
		gen.Float64Range(10.0, 500.0),
		gen.Float64Range(0.7, 1.3),
		gen.Float64Range(0.10, 1.50),
		gen.IntRange(1, 90),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: put-call parity holds for any model-priced pair at the same
// strike and expiry: C - P = S - K e^{-rt}.
func TestProperty_PutCallParity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	const rate = 0.01

	properties.Property("call minus put equals forward value", prop.ForAll(
		func(spot, moneyness, sigma float64, days int) bool {
			strike := spot * moneyness
			tm := float64(days) / DaysPerYear

			d1, d2 := D1D2(sigma, spot, strike, rate, tm)
			call := CallPrice(spot, strike, rate, tm, d1, d2)
			put := PutPrice(spot, strike, rate, tm, d1, d2)

			lhs := call - put
			rhs := spot - strike*math.Exp(-rate*tm)
			return math.Abs(lhs-rhs) < 1e-6*spot
		},
		gen.Float64Range(10.0, 500.0),
		gen.Float64Range(0.7, 1.3),
		gen.Float64Range(0.10, 1.50),
		gen.IntRange(1, 365),
	))

	properties.TestingRun(t)
}
