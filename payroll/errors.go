/*
errors.go - Error types for the payroll engine

PURPOSE:
  All error types in one place. The store and API packages wrap these with
  context and classify them with the helpers at the bottom.

ERROR CATEGORIES:
  1. Request errors - malformed year/month, caught before the core runs
  2. Configuration errors - a payment type with an unknown rule
  3. Lookup errors - employee or record not found
*/
package payroll

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRequest is returned for a payslip request with a bad year or month.
	ErrInvalidRequest = errors.New("invalid payslip request")

	// ErrUnsupportedFrequency is returned when a recurrence rule is not
	// MONTHLY or YEARLY. Never silently treated as zero occurrences.
	ErrUnsupportedFrequency = errors.New("unsupported frequency")

	// ErrPeriodOutsideYear is returned when a reporting period does not lie
	// within the year of the selection it refines.
	ErrPeriodOutsideYear = errors.New("period outside selection year")

	// ErrEmployeeNotFound is returned when the payment source has no such employee.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrSourceRequired is returned when a Generator has no PaymentSource.
	ErrSourceRequired = errors.New("payment source required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the request field that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// FrequencyError carries the rule text that could not be expanded.
type FrequencyError struct {
	Rule string
}

func (e *FrequencyError) Error() string {
	return fmt.Sprintf("unsupported frequency %q", e.Rule)
}

func (e *FrequencyError) Unwrap() error { return ErrUnsupportedFrequency }

// PaymentError attaches the failing payment to an aggregation error.
type PaymentError struct {
	PaymentID PaymentID
	Date      time.Time
	Err       error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %s (%s): %v", e.PaymentID, e.Date.Format(dateTimeLayout), e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrPeriodOutsideYear)
}

// IsConfigError returns true for errors caused by stored configuration, such
// as a payment type with an unknown rule.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnsupportedFrequency)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
