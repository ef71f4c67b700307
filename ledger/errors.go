/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error kinds in one place. Every operation resolves to a success value
  or one of these kinds; expected conditions (insufficient balance, missing
  card) are sentinel errors, not panics.

ERROR CATEGORIES:
  1. Not-found     - referenced card or snapshot does not exist
  2. Invalid input - zero amount, out-of-range year/month/page, future date
  3. Balance       - a debit would drive the balance negative
  4. Storage       - wrapped database failures, surfaced unmodified

USAGE:
  if errors.Is(err, ledger.ErrInsufficientBalance) { ... }

SEE ALSO:
  - recorder.go, summary.go: produce these errors
  - api/handlers.go: maps them to HTTP status codes
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCardNotFound is returned when a referenced card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrZeroAmount is returned when an entry would not change the balance.
	ErrZeroAmount = errors.New("amount must not be zero")

	// ErrInsufficientBalance is returned when a debit exceeds the card's
	// current balance. The ledger is left untouched.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrFutureTimestamp is returned for historical queries dated in the future.
	ErrFutureTimestamp = errors.New("timestamp is in the future")

	// ErrYearOutOfRange is returned for summary years outside 2000-2100.
	ErrYearOutOfRange = errors.New("year out of range")

	// ErrMonthOutOfRange is returned for summary months outside 1-12.
	ErrMonthOutOfRange = errors.New("month out of range")

	// ErrInvalidPage is returned for non-positive pages or page sizes
	// outside the allowed bounds.
	ErrInvalidPage = errors.New("invalid page or page size")

	// ErrInvalidRetention is returned for negative retention windows.
	ErrInvalidRetention = errors.New("retention days must not be negative")

	// ErrBalanceMismatch indicates a violated ledger or snapshot invariant.
	ErrBalanceMismatch = errors.New("balance invariant violated")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError details a rejected debit.
type InsufficientBalanceError struct {
	CardID    CardID
	Available string
	Requested string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance on card %s: available %s, requested %s",
		e.CardID, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCardNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrZeroAmount) ||
		errors.Is(err, ErrFutureTimestamp) ||
		errors.Is(err, ErrYearOutOfRange) ||
		errors.Is(err, ErrMonthOutOfRange) ||
		errors.Is(err, ErrInvalidPage) ||
		errors.Is(err, ErrInvalidRetention)
}
