// Package models defines the core domain types for the wheel tracker.
package models

import (
	"fmt"
	"sort"
	"time"
)

// Recommendation tags a ticker with a trading recommendation.
type Recommendation string

const (
	RecommendationNone           Recommendation = "NO"
	RecommendationStable         Recommendation = "ST"
	RecommendationHighVolatility Recommendation = "HV"
)

// Ticker represents a publicly traded stock symbol.
type Ticker struct {
	ID             int64
	Symbol         string
	Recommendation Recommendation
	CreatedAt      time.Time
}

func (t Ticker) String() string {
	return t.Symbol
}

// Account represents a brokerage account that trades options, like "Robinhood".
type Account struct {
	ID   int64
	Name string
}

// OptionSide distinguishes sold calls from sold puts.
type OptionSide string

const (
	SideCall OptionSide = "C"
	SidePut  OptionSide = "P"
)

// OptionLeg represents a single option sold against a wheel on a specific day.
// Legs are immutable once created.
type OptionLeg struct {
	ID           int64
	WheelID      int64
	PurchaseTime time.Time
	Expiration   time.Time // date precision
	Strike       float64
	Premium      float64
	PriceAtSale  float64
	Side         OptionSide
}

func (l OptionLeg) String() string {
	return fmt.Sprintf("$%.2f %s (exp. %s)", l.Strike, l.Side, l.Expiration.Format("Jan 2, 2006"))
}

// SortLegs orders legs by the invariant key: expiration descending, then
// purchase time descending. The newest leg comes first, the opening leg last.
func SortLegs(legs []OptionLeg) {
	sort.SliceStable(legs, func(i, j int) bool {
		if !legs[i].Expiration.Equal(legs[j].Expiration) {
			return legs[i].Expiration.After(legs[j].Expiration)
		}
		return legs[i].PurchaseTime.After(legs[j].PurchaseTime)
	})
}

// WheelStatus classifies a wheel against the current market price.
type WheelStatus string

const (
	StatusExit  WheelStatus = "Exit"  // price at or above the last strike
	StatusHold  WheelStatus = "Hold"  // price covers the cost basis
	StatusUnder WheelStatus = "Under" // price below the cost basis
)

// Wheel tracks one run of the wheel strategy: a cash-secured put, possibly
// followed by assignment and covered calls. The three lifecycle pointers are
// nil while the wheel is open and are only written by Close and Reopen.
type Wheel struct {
	ID       int64
	TickerID int64
	Symbol   string
	Account  *Account
	Quantity int
	Active   bool

	TotalProfit     *float64
	TotalDaysActive *int
	Collateral      *float64

	// Legs in the invariant order: newest expiration first.
	Legs []OptionLeg

	// Derived fields, recomputed from legs on demand and never persisted.
	Derived *WheelDerived
}

// WheelDerived holds the ledger's projection over a wheel's legs.
type WheelDerived struct {
	Revenue               float64
	CostBasis             float64
	OpenStrike            float64
	ProfitIfExitsHere     float64
	DaysActiveSoFar       int
	DecimalRateOfReturn   float64
	AnnualizedIfExitsHere float64

	// Populated only when a live price was fetched.
	CurrentPrice float64
	OnTrack      WheelStatus
}

// NewestLeg returns the most recent leg (first in the invariant order), or nil.
func (w *Wheel) NewestLeg() *OptionLeg {
	if len(w.Legs) == 0 {
		return nil
	}
	return &w.Legs[0]
}

// OpeningLeg returns the oldest leg (last in the invariant order), or nil.
func (w *Wheel) OpeningLeg() *OptionLeg {
	if len(w.Legs) == 0 {
		return nil
	}
	return &w.Legs[len(w.Legs)-1]
}

// OpeningDate is the purchase date of the opening leg, or the earliest
// representable date for a wheel with no legs.
func (w *Wheel) OpeningDate() time.Time {
	if leg := w.OpeningLeg(); leg != nil {
		return leg.PurchaseTime
	}
	return time.Time{}
}

// ExpirationDate is the expiration of the newest leg, or the latest
// representable date for a wheel with no legs.
func (w *Wheel) ExpirationDate() time.Time {
	if leg := w.NewestLeg(); leg != nil {
		return leg.Expiration
	}
	return maxDate
}

// Revenue is the sum of all leg premiums. The second return is false when the
// wheel has no legs.
func (w *Wheel) Revenue() (float64, bool) {
	if len(w.Legs) == 0 {
		return 0, false
	}
	var sum float64
	for _, leg := range w.Legs {
		sum += leg.Premium
	}
	return sum, true
}

// CostBasis is the opening strike less total premium revenue. The second
// return is false when the wheel has no legs or no revenue.
func (w *Wheel) CostBasis() (float64, bool) {
	revenue, ok := w.Revenue()
	if !ok || revenue == 0 {
		return 0, false
	}
	opening := w.OpeningLeg()
	if opening == nil {
		return 0, false
	}
	return opening.Strike - revenue, true
}

func (w *Wheel) String() string {
	prefix := ""
	if w.Quantity > 1 {
		prefix = fmt.Sprintf("(%d) ", w.Quantity)
	}
	suffix := ""
	if w.Account != nil {
		suffix = fmt.Sprintf(" [%s]", w.Account.Name)
	}
	newest := w.NewestLeg()
	if newest == nil {
		return prefix + w.Symbol + suffix
	}
	return fmt.Sprintf("%s$%.2f %s %s (opened %s, exp. %s)%s",
		prefix, newest.Strike, newest.Side, w.Symbol,
		w.OpeningDate().Format("Jan 2, 2006"),
		w.ExpirationDate().Format("Jan 2, 2006"),
		suffix)
}

// maxDate is the sentinel "latest possible" expiration for an empty wheel.
var maxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
