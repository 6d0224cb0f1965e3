// Package returns converts finite-horizon profit ratios into annualized
// rates of return.
package returns

import "math"

const (
	// TradingDaysPerYear is the compounding basis for annualization.
	TradingDaysPerYear = 252
	// MinHorizonDays floors the annualization horizon. Options cannot
	// realistically be rolled more than weekly, so shorter horizons would
	// over-annualize.
	MinHorizonDays = 5
)

// Annualize compounds an expected one-period return to a yearly basis.
// successProfit and failProfit are decimal profit ratios for the two
// outcomes; successOdds weights them. The result is the expected decimal
// return over a 252-trading-day year.
func Annualize(successProfit, successOdds float64, days int, failProfit float64) float64 {
	if days < MinHorizonDays {
		days = MinHorizonDays
	}
	expected := (1+successProfit)*successOdds + (1+failProfit)*(1-successOdds)
	return math.Pow(expected, TradingDaysPerYear/float64(days))
}

// CallOnlyProfit is the max-profit ratio of a covered call viewed in
// isolation: buy the stock today, get called away at the strike.
func CallOnlyProfit(strike, price, currentPrice float64) float64 {
	return (strike + price - currentPrice) / currentPrice
}

// WheelProfit is the max-profit ratio of a covered call viewed as the next
// leg of an existing wheel, accounting for the position's collateral and
// premium revenue to date.
func WheelProfit(strike, collateral, price, revenue float64) float64 {
	return (strike - collateral + price + revenue) / collateral
}
