// Package marketdata defines the external quote feed boundary.
package marketdata

import (
	"context"
	"time"

	"wheel-tracker/internal/models"
)

// Provider is the external quote feed. Every method may fail transiently;
// callers must treat failure as "unavailable now", never as "permanently
// empty".
type Provider interface {
	// RecentCloses returns up to days of the most recent trading-day closes,
	// oldest first.
	RecentCloses(ctx context.Context, symbol string, days int) ([]models.ClosePrice, error)

	// AvailableExpiries returns the nearest option expiry dates, at most
	// limit of them, soonest first.
	AvailableExpiries(ctx context.Context, symbol string, limit int) ([]time.Time, error)

	// OptionChain returns the chain snapshot for one side of one expiry,
	// rows ordered by strike ascending.
	OptionChain(ctx context.Context, symbol string, expiry time.Time, side models.OptionSide) ([]models.OptionQuote, error)

	// NextEarningsDate returns the next future earnings date. ok=false with a
	// nil error is a confirmed "no earnings scheduled", which is distinct
	// from a lookup failure.
	NextEarningsDate(ctx context.Context, symbol string) (date time.Time, ok bool, err error)
}
