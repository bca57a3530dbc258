/*
errors.go - Centralized error types for the quota engine

ERROR CATEGORIES:
  1. Planning errors - caller input problems (4xx at the API boundary)
  2. Store errors    - missing ledgers, write conflicts

All planning failures carry the offending values so the API can echo them
(e.g. the remaining quota on a QuotaExceeded rejection). None are retried
automatically: they represent caller mistakes, not transient faults.
*/
package quota

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for malformed dates or dates outside the
	// ledger's [StartDate, Deadline] window.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidCount is returned for negative or out-of-policy counts.
	ErrInvalidCount = errors.New("invalid count")

	// ErrInvalidWindow is returned when the deadline window is out of policy.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrQuotaExceeded is returned when an allocation would push the planned
	// sum past the target count.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrNoAllocation is returned when moving from a date with no entry.
	ErrNoAllocation = errors.New("no allocation on date")

	// ErrPastDate is returned when moving an allocation to a date before the
	// operational today.
	ErrPastDate = errors.New("destination date is in the past")

	// ErrLedgerNotFound is returned when a referenced ledger doesn't exist.
	ErrLedgerNotFound = errors.New("ledger not found")

	// ErrConcurrentModification is returned when an optimistic version check
	// detects a conflicting write.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending values
// =============================================================================

type InvalidDateError struct {
	Date     Date
	Start    Date
	Deadline Date
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("date %s outside window [%s, %s]", e.Date, e.Start, e.Deadline)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

type InvalidCountError struct {
	Count int
	Max   int // 0 = no upper bound involved
}

func (e *InvalidCountError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("count %d out of range (1..%d)", e.Count, e.Max)
	}
	return fmt.Sprintf("count %d must not be negative", e.Count)
}

func (e *InvalidCountError) Unwrap() error { return ErrInvalidCount }

// QuotaExceededError reports how much of the quota is still available after
// the other allocation entries are accounted for.
type QuotaExceededError struct {
	Date      Date
	Requested int
	Available int
	Target    int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("planning %d on %s exceeds target %d: only %d available",
		e.Requested, e.Date, e.Target, e.Available)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

type NoAllocationError struct {
	Date Date
}

func (e *NoAllocationError) Error() string {
	return fmt.Sprintf("no allocation planned on %s", e.Date)
}

func (e *NoAllocationError) Unwrap() error { return ErrNoAllocation }

type PastDateError struct {
	Date  Date
	Today Date
}

func (e *PastDateError) Error() string {
	return fmt.Sprintf("destination %s is before today (%s)", e.Date, e.Today)
}

func (e *PastDateError) Unwrap() error { return ErrPastDate }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is the caller's fault (maps to 400).
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidCount) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrNoAllocation) ||
		errors.Is(err, ErrPastDate)
}

// IsNotFound reports whether the error indicates a missing ledger (404).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLedgerNotFound)
}

// IsRetryable reports whether the operation might succeed if repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
