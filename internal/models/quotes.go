package models

import "time"

// ClosePrice is a single trading-day close reported by the quote provider.
type ClosePrice struct {
	Date  time.Time
	Price float64
}

// OptionQuote is one row of an option-chain snapshot. Volume and implied
// volatility come straight from the feed and may be NaN on broken rows.
type OptionQuote struct {
	Strike            float64
	LastPrice         float64
	Bid               float64
	Ask               float64
	Volume            float64
	ImpliedVolatility float64
}

// OptionStat is a screened, return-ranked candidate contract. It is computed
// per request and never persisted.
type OptionStat struct {
	Symbol           string
	Side             OptionSide
	Strike           float64
	Price            float64 // effective price: bid during market hours, else last trade
	Expiration       time.Time
	DaysToExpiry     int
	MaxProfitDecimal float64
	OddsOutOfMoney   float64
	AnnualizedReturn float64
	IncludesEarnings bool

	// Call-only economics; zero for puts.
	CallOnlyMaxProfit float64
	WheelMaxProfit    float64
}
