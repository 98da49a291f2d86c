/*
errors.go - Error taxonomy for the platform core

PURPOSE:
  One place for the error kinds every boundary maps onto:

  1. NotFound              referenced document absent; abort, no partial write
  2. ValidationError       bad amounts, malformed PIN, invalid ranges
  3. AuthenticationFailure wrong PIN, disabled account, bad token
  4. ExternalServiceFailure payment/email/market-data call failed
  5. ConfigurationError    missing secret at startup; fatal before serving

  Core functions return explicit errors, never panic across the boundary.
  Helper failures are logged with context and converted to one of these kinds
  before reaching the caller-facing layer.

USAGE:
  if errors.Is(err, invest.ErrNotFound) { ... 404 ... }
*/
package invest

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced user/investment/withdrawal
	// document does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned for client input rejected before any
	// external call.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication covers wrong PIN, disabled accounts and bad tokens.
	// Callers surface a generic message; which check failed is not leaked.
	ErrAuthentication = errors.New("authentication failed")

	// ErrExternalService is returned when a SaaS collaborator (payment,
	// email, market data) is unreachable or errors.
	ErrExternalService = errors.New("external service failure")

	// ErrConfiguration is returned for missing required secrets/credentials
	// at startup. Fatal: the process must not serve traffic.
	ErrConfiguration = errors.New("configuration error")

	// ErrTerminalStatus is returned when an admin attempts a transition on an
	// entity that already reached a terminal status. Guarantees a duplicate
	// transition never re-sends a notification.
	ErrTerminalStatus = errors.New("status is terminal")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError carries the offending field for inline surfacing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// CeilingExceededError is returned when a withdrawal request exceeds the
// reconciled available balance. Available is the raw (possibly negative)
// internal value, not the floored display value.
type CeilingExceededError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *CeilingExceededError) Error() string {
	return fmt.Sprintf("withdrawal %s exceeds available balance %s",
		e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

func (e *CeilingExceededError) Unwrap() error { return ErrValidation }

// ExternalServiceError names the collaborator that failed.
type ExternalServiceError struct {
	Service string // "paystack", "resend", "twelvedata"
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return ErrExternalService }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
