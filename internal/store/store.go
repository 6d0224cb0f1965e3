// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"wheel-tracker/internal/models"
)

// DataStore defines the interface for wheel persistence. The store owns
// records only; derived wheel fields are recomputed by the ledger and never
// written here.
type DataStore interface {
	// Tickers
	CreateTicker(ctx context.Context, symbol string, rec models.Recommendation) (*models.Ticker, error)
	GetTicker(ctx context.Context, symbol string) (*models.Ticker, error)
	ListTickers(ctx context.Context) ([]models.Ticker, error)
	ListTickersByRecommendation(ctx context.Context, rec models.Recommendation) ([]models.Ticker, error)
	UpdateRecommendation(ctx context.Context, symbol string, rec models.Recommendation) error
	DeleteTicker(ctx context.Context, symbol string) error

	// Accounts
	CreateAccount(ctx context.Context, name string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// Wheels. Legs are always loaded in the invariant order: expiration
	// descending, then purchase time descending.
	CreateWheel(ctx context.Context, w *models.Wheel) error
	GetWheel(ctx context.Context, id int64) (*models.Wheel, error)
	ListWheels(ctx context.Context, filter WheelFilter) ([]models.Wheel, error)
	UpdateWheelLifecycle(ctx context.Context, w *models.Wheel) error
	DeleteWheel(ctx context.Context, id int64) error

	// Legs are immutable once created.
	AddLeg(ctx context.Context, leg *models.OptionLeg) error

	// Lifecycle
	Close() error
}

// WheelFilter represents filters for querying wheels.
type WheelFilter struct {
	Symbol string
	Active *bool
	Limit  int
}
