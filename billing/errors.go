/*
errors.go - Centralized error types for the billing domain

PURPOSE:
  All domain error types in one place for consistency and
  discoverability. The API layer maps these onto HTTP status codes via
  the classification helpers at the bottom.

ERROR CATEGORIES:
  1. Not-found errors - Referenced entities that don't exist
  2. State errors - Invalid lifecycle transitions, non-billable input
  3. Job errors - Queue processing failures

USAGE:
  if errors.Is(err, billing.ErrContractNotActive) {
      // 409, not 500
  }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrProductNotFound is returned when a referenced product doesn't exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrContractNotFound is returned when a referenced contract doesn't exist.
	ErrContractNotFound = errors.New("contract not found")

	// ErrInvoiceNotFound is returned when a referenced invoice doesn't exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrJobNotFound is returned when a referenced billing job doesn't exist.
	ErrJobNotFound = errors.New("billing job not found")

	// ErrContractNotActive is returned when invoice generation is requested
	// for a contract that is not active during the billing period.
	ErrContractNotActive = errors.New("contract not active in billing period")

	// ErrAccountNotBillable is returned when the owning account is
	// suspended or closed.
	ErrAccountNotBillable = errors.New("account not billable")

	// ErrDuplicateInvoice is returned when an invoice already exists for
	// the same contract and billing period. Billing runs are idempotent
	// per contract+period.
	ErrDuplicateInvoice = errors.New("invoice already exists for contract and period")

	// ErrInvalidStatusTransition is the sentinel behind StatusTransitionError.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrJobNotRunnable is returned when a job is claimed in a state
	// other than pending, or before its scheduled retry time.
	ErrJobNotRunnable = errors.New("job not runnable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StatusTransitionError details a rejected lifecycle transition.
type StatusTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition: %s -> %s", e.Entity, e.From, e.To)
}

func (e *StatusTransitionError) Unwrap() error {
	return ErrInvalidStatusTransition
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrJobNotFound)
}

// IsClientError returns true if the error is due to invalid client input
// or state, as opposed to an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrContractNotActive) ||
		errors.Is(err, ErrAccountNotBillable) ||
		errors.Is(err, ErrDuplicateInvoice) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrJobNotRunnable)
}
