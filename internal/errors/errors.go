// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNoData              = errors.New("no data available")
	ErrProviderUnavailable = errors.New("quote provider unavailable")
	ErrTickerNotFound      = errors.New("ticker not found")
	ErrWheelNotFound       = errors.New("wheel not found")
	ErrNoLegs              = errors.New("wheel has no legs")
	ErrNoPutLegs           = errors.New("wheel has no put legs")
	ErrNotConverged        = errors.New("volatility solve did not converge")
	ErrInvalidDateRange    = errors.New("start date is after end date")
	ErrScanRunning         = errors.New("scan already running")
	ErrDatabaseError       = errors.New("database error")
	ErrConfigInvalid       = errors.New("invalid configuration")
)

// ProviderError represents a failure talking to the external quote feed.
// Provider failures are always transient: "unavailable now", never
// "permanently empty".
type ProviderError struct {
	Operation string
	Symbol    string
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%s] %s: %v", e.Operation, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError.
func NewProviderError(operation, symbol string, err error) *ProviderError {
	return &ProviderError{
		Operation: operation,
		Symbol:    symbol,
		Err:       err,
	}
}

// LedgerError represents a programming-contract violation on a wheel
// transition, such as closing a wheel with no legs. These indicate a caller
// bug, not bad market data, and should fail loudly.
type LedgerError struct {
	WheelID   int64
	Operation string
	Err       error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger error [wheel %d] %s: %v", e.WheelID, e.Operation, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// NewLedgerError creates a new LedgerError.
func NewLedgerError(wheelID int64, operation string, err error) *LedgerError {
	return &LedgerError{
		WheelID:   wheelID,
		Operation: operation,
		Err:       err,
	}
}

// SolveError represents a numerical failure in the implied-volatility solver.
// Callers treat it like a data-quality rejection: the candidate is dropped.
type SolveError struct {
	Spot   float64
	Strike float64
	Price  float64
	Err    error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve error [spot %.2f strike %.2f price %.2f]: %v", e.Spot, e.Strike, e.Price, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}

// NewSolveError creates a new SolveError.
func NewSolveError(spot, strike, price float64, err error) *SolveError {
	return &SolveError{
		Spot:   spot,
		Strike: strike,
		Price:  price,
		Err:    err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
