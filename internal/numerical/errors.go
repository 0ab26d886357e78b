package numerical

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("simulator circuit breaker is open")
	// ErrInvalidConfig reports a rejected middleware configuration.
	ErrInvalidConfig = errors.New("invalid simulator configuration")
)

// BackendError is a failure reported by a simulation backend.
// Retryable marks transient failures that the retry middleware may repeat.
type BackendError struct {
	Backend   string
	Message   string
	Retryable bool
	Cause     error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Cause }

// IsRetryable reports whether err is a transient simulator failure.
// Context errors and an open circuit are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return false
}
