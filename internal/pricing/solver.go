package pricing

import (
	"math"

	"wheel-tracker/internal/errors"
	"wheel-tracker/internal/models"
)

const (
	// VolatilityGuess seeds the Newton-Raphson iteration.
	VolatilityGuess = 0.50
	// MaxIterations bounds the solve; either the volatility stabilizes by
	// then or the quote is not worth pricing.
	MaxIterations = 20
	// Tolerance stops the iteration once volatility moves by less than 1%
	// between steps.
	Tolerance = 0.01
	// ImpliedVolCeiling marks the regime where a conventional solver becomes
	// numerically unstable. Quotes above it must use the bounded solver
	// directly, trading some precision for bounded runtime.
	ImpliedVolCeiling = 4.4
	// degenerateVega guards the Newton step against division by zero.
	degenerateVega = 1e-10
)

// Solver solves for implied volatility and delta from an observed option
// price via bounded Newton-Raphson iteration.
type Solver struct {
	// InterestRate is the annualized risk-free rate as a decimal.
	InterestRate float64
}

// NewSolver creates a solver with the given risk-free rate.
func NewSolver(interestRate float64) *Solver {
	return &Solver{InterestRate: interestRate}
}

// Result holds the converged solve output.
type Result struct {
	ImpliedVolatility float64
	Delta             float64
}

// Solve finds the volatility at which the model price matches the observed
// option price, and reports the delta at that volatility. A degenerate vega
// or a non-finite update surfaces as ErrNotConverged rather than propagating
// NaN into downstream ranking.
func (s *Solver) Solve(spot, strike float64, daysToExpiry int, optionPrice float64, side models.OptionSide) (Result, error) {
	if spot <= 0 || strike <= 0 || daysToExpiry <= 0 || optionPrice <= 0 {
		return Result{}, errors.NewSolveError(spot, strike, optionPrice, errors.ErrNotConverged)
	}

	t := float64(daysToExpiry) / DaysPerYear
	sigma := VolatilityGuess
	var d1 float64

	for i := 0; i < MaxIterations; i++ {
		prev := sigma

		var d2, value float64
		d1, d2 = D1D2(sigma, spot, strike, s.InterestRate, t)
		if side == models.SideCall {
			value = CallPrice(spot, strike, s.InterestRate, t, d1, d2) - optionPrice
		} else {
			value = PutPrice(spot, strike, s.InterestRate, t, d1, d2) - optionPrice
		}

		vega := Vega(spot, t, d1)
		if math.Abs(vega) < degenerateVega {
			return Result{}, errors.NewSolveError(spot, strike, optionPrice, errors.ErrNotConverged)
		}

		sigma -= value / vega
		if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
			return Result{}, errors.NewSolveError(spot, strike, optionPrice, errors.ErrNotConverged)
		}

		if math.Abs((sigma-prev)/prev) < Tolerance {
			break
		}
	}

	// Delta at the final volatility.
	d1, _ = D1D2(sigma, spot, strike, s.InterestRate, t)
	delta := PutDelta(d1)
	if side == models.SideCall {
		delta = CallDelta(d1)
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return Result{}, errors.NewSolveError(spot, strike, optionPrice, errors.ErrNotConverged)
	}

	return Result{ImpliedVolatility: sigma, Delta: delta}, nil
}

// OddsOutOfTheMoney converts a solved delta into the probability the contract
// expires out of the money. Delta is the standard probability proxy: a put
// with delta -0.30 finishes in the money about 30% of the time.
func (s *Solver) OddsOutOfTheMoney(spot, strike float64, daysToExpiry int, optionPrice float64, side models.OptionSide) (float64, error) {
	res, err := s.Solve(spot, strike, daysToExpiry, optionPrice, side)
	if err != nil {
		return 0, err
	}
	if side == models.SideCall {
		return 1 - res.Delta, nil
	}
	return 1 + res.Delta, nil
}
