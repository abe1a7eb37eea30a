package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	// Adapters map it to 404/NOT_FOUND.
	ErrNotFound = errors.New("not found")
	// ErrNoActor rejects a mutation that arrived without an authenticated
	// actor: anonymous audit rows are worse than a failed request.
	ErrNoActor = errors.New("actor identity required")
	// ErrInvalidCredentials hides whether the username or password failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError rejects bad input before any mutation takes place.
// The message names the violated bound precisely enough for the UI to
// render it verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientStockError rejects a decrement or transfer that exceeds the
// available quantity of a guarded dimension. No mutation has taken place.
type InsufficientStockError struct {
	WarehouseID int
	ProductID   int
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in warehouse %d for product %d: requested %d, available %d (short by %d)",
		e.WarehouseID, e.ProductID, e.Requested, e.Available, e.Requested-e.Available)
}

// ConsistencyViolationError reports that a transfer's credit leg failed after
// the debit leg had committed. The debit has been compensated (unless
// CompensationErr is non-nil); the operation is safe to retry.
type ConsistencyViolationError struct {
	CorrelationID   string
	Err             error
	CompensationErr error
}

func (e *ConsistencyViolationError) Error() string {
	if e.CompensationErr != nil {
		return fmt.Sprintf("transfer %s: credit leg failed (%v) and compensation also failed (%v); manual reconciliation required",
			e.CorrelationID, e.Err, e.CompensationErr)
	}
	return fmt.Sprintf("transfer %s: credit leg failed, source debit compensated: %v", e.CorrelationID, e.Err)
}

func (e *ConsistencyViolationError) Unwrap() error { return e.Err }

// TransientIOError wraps a backend failure (unreachable database, statement
// timeout). The caller may retry; partial state is only possible when the
// underlying write was not itself atomic.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient i/o failure during %s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// IsRetryable reports whether err indicates a failure the caller may safely
// retry: transient backend errors and compensated transfer failures.
func IsRetryable(err error) bool {
	var tio *TransientIOError
	if errors.As(err, &tio) {
		return true
	}
	var cv *ConsistencyViolationError
	if errors.As(err, &cv) {
		return cv.CompensationErr == nil
	}
	return false
}
