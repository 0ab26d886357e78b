// Package generation produces candidate batches. Generators turn a prompt
// into candidates; ingestion turns decoded documents into candidates and
// fails fast on anything that violates the candidate contract.
package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownGenerator is returned by New for an unregistered generator name.
	ErrUnknownGenerator = errors.New("unknown generator")

	// ErrEmptyBatch signals that a generator produced no candidates.
	ErrEmptyBatch = errors.New("generator produced no candidates")
)

// ErrorType says which side of the generation boundary failed.
type ErrorType string

const (
	ErrorValidation ErrorType = "validation" // bad prompt, count or document
	ErrorGenerator  ErrorType = "generator"  // backend failure, possibly transient
	ErrorInternal   ErrorType = "internal"   // template or sampler bug
)

// Error is returned by generators and ingestion. Retryable is only ever set
// for ErrorGenerator.
type Error struct {
	Type      ErrorType
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	msg := string(e.Type) + ": " + e.Message
	if e.Retryable {
		msg += " [retryable]"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

func validationError(cause error, format string, args ...any) *Error {
	return &Error{Type: ErrorValidation, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsRetryable reports whether err carries a retryable generation Error.
func IsRetryable(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Retryable
}
