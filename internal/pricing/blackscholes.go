// Package pricing implements Black-Scholes option pricing and the bounded
// Newton-Raphson implied-volatility solver behind the candidate screen.
package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DaysPerYear converts days-to-expiry into model time. The pricing model uses
// calendar-year time, unlike the 252-day annualization basis.
const DaysPerYear = 365.0

var stdNormal = distuv.UnitNormal

// D1D2 computes the d1/d2 terms of the standard Black-Scholes formulation.
// S is spot, K strike, r the annualized risk-free rate as a decimal, t time
// to expiry in years.
func D1D2(sigma, S, K, r, t float64) (d1, d2 float64) {
	d1 = (math.Log(S/K) + (r+sigma*sigma/2)*t) / (sigma * math.Sqrt(t))
	d2 = d1 - sigma*math.Sqrt(t)
	return d1, d2
}

// CallPrice is the Black-Scholes theoretical call price.
func CallPrice(S, K, r, t, d1, d2 float64) float64 {
	return stdNormal.CDF(d1)*S - stdNormal.CDF(d2)*K*math.Exp(-r*t)
}

// PutPrice is the Black-Scholes theoretical put price.
func PutPrice(S, K, r, t, d1, d2 float64) float64 {
	return -stdNormal.CDF(-d1)*S + stdNormal.CDF(-d2)*K*math.Exp(-r*t)
}

// CallDelta is N(d1).
func CallDelta(d1 float64) float64 {
	return stdNormal.CDF(d1)
}

// PutDelta is N(d1) - 1, equivalently -N(-d1).
func PutDelta(d1 float64) float64 {
	return -stdNormal.CDF(-d1)
}

// Vega is the derivative of price with respect to volatility.
func Vega(S, t, d1 float64) float64 {
	return S * stdNormal.Prob(d1) * math.Sqrt(t)
}
