// Package ledger computes the derived financial state of a wheel and drives
// its lifecycle transitions.
package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wheel-tracker/internal/calendar"
	"wheel-tracker/internal/errors"
	"wheel-tracker/internal/models"
	"wheel-tracker/internal/returns"
)

// PriceSource supplies the live price used by Refresh's on-track
// classification. The cached quoter satisfies it; tests substitute a stub.
type PriceSource interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// Ledger projects derived fields from a wheel's immutable legs and performs
// the Close/Reopen lifecycle transitions. Derived fields are recomputed on
// every read and never persisted; only Close and Reopen write the lifecycle
// fields.
type Ledger struct {
	prices    PriceSource
	counter   *calendar.BusinessDayCounter
	closeHour int
	location  *time.Location
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates a ledger. closeHour is the local market-close hour used by
// Expired; location is the market timezone.
func New(prices PriceSource, counter *calendar.BusinessDayCounter, closeHour int, location *time.Location, logger zerolog.Logger) *Ledger {
	return &Ledger{
		prices:    prices,
		counter:   counter,
		closeHour: closeHour,
		location:  location,
		logger:    logger.With().Str("component", "ledger").Logger(),
		now:       time.Now,
	}
}

// Refresh recomputes the wheel's derived fields from its legs. It is a no-op
// (Derived left nil) when the wheel has no legs or no computable cost basis.
// When fetchLivePrice is set, the wheel is additionally classified as Exit,
// Hold, or Under against the current price; a price fetch failure skips the
// classification rather than failing the refresh.
func (l *Ledger) Refresh(ctx context.Context, w *models.Wheel, fetchLivePrice bool) error {
	w.Derived = nil

	if len(w.Legs) == 0 {
		return nil
	}
	revenue, ok := w.Revenue()
	if !ok {
		return nil
	}
	costBasis, ok := w.CostBasis()
	if !ok {
		return nil
	}

	opening := w.OpeningLeg()
	newest := w.NewestLeg()

	days, err := l.counter.InclusiveCount(opening.PurchaseTime, newest.Expiration)
	if err != nil {
		return errors.NewLedgerError(w.ID, "refresh", err)
	}

	profit := newest.Strike - costBasis
	rate := profit / opening.Strike

	derived := &models.WheelDerived{
		Revenue:               revenue,
		CostBasis:             costBasis,
		OpenStrike:            opening.Strike,
		ProfitIfExitsHere:     profit,
		DaysActiveSoFar:       days,
		DecimalRateOfReturn:   rate,
		AnnualizedIfExitsHere: returns.Annualize(rate, 1, days, 0),
	}

	if fetchLivePrice {
		price, err := l.prices.CurrentPrice(ctx, w.Symbol)
		if err != nil {
			l.logger.Debug().Err(err).Str("symbol", w.Symbol).Msg("Live price unavailable, skipping classification")
		} else {
			derived.CurrentPrice = price
			switch {
			case price >= newest.Strike:
				derived.OnTrack = models.StatusExit
			case price >= costBasis:
				derived.OnTrack = models.StatusHold
			default:
				derived.OnTrack = models.StatusUnder
			}
		}
	}

	w.Derived = derived
	return nil
}

// Close transitions the wheel to inactive and writes the lifecycle fields.
// It requires at least one leg and at least one put leg: collateral is the
// largest strike among puts, since the put is what secured the position.
// A call-only wheel cannot define collateral and fails the transition.
func (l *Ledger) Close(w *models.Wheel) error {
	if len(w.Legs) == 0 {
		return errors.NewLedgerError(w.ID, "close", errors.ErrNoLegs)
	}

	collateral := 0.0
	hasPut := false
	for _, leg := range w.Legs {
		if leg.Side == models.SidePut {
			hasPut = true
			if leg.Strike > collateral {
				collateral = leg.Strike
			}
		}
	}
	if !hasPut {
		return errors.NewLedgerError(w.ID, "close", errors.ErrNoPutLegs)
	}

	opening := w.OpeningLeg()
	newest := w.NewestLeg()

	days, err := l.counter.InclusiveCount(opening.PurchaseTime, newest.Expiration)
	if err != nil {
		return errors.NewLedgerError(w.ID, "close", err)
	}

	revenue, _ := w.Revenue()
	profit := revenue + newest.Strike - opening.Strike

	w.Active = false
	w.TotalProfit = &profit
	w.TotalDaysActive = &days
	w.Collateral = &collateral

	l.logger.Info().
		Int64("wheel_id", w.ID).
		Float64("profit", profit).
		Int("days_active", days).
		Float64("collateral", collateral).
		Msg("Wheel closed")
	return nil
}

// Reopen transitions the wheel back to active and clears the lifecycle
// fields. The leg history is retained; the wheel behaves as freshly opened.
func (l *Ledger) Reopen(w *models.Wheel) {
	w.Active = true
	w.TotalProfit = nil
	w.TotalDaysActive = nil
	w.Collateral = nil

	l.logger.Info().Int64("wheel_id", w.ID).Msg("Wheel reopened")
}

// Expired reports whether an active wheel's newest leg has expired. Before
// the market-close hour today's expiration still counts as live; after it,
// it does not. An inactive wheel is never expired, only completed.
func (l *Ledger) Expired(w *models.Wheel) bool {
	if !w.Active || len(w.Legs) == 0 {
		return false
	}

	now := l.now().In(l.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiry := w.ExpirationDate()
	expiry = time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)

	if now.Hour() >= l.closeHour {
		return !expiry.After(today)
	}
	return expiry.Before(today)
}
