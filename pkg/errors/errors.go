package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures across the capture and reconciliation
// pipeline. The classification drives retry decisions and log fields.
type ErrorType string

const (
	// ErrorTypeParse marks a single malformed post or entry fragment.
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeStructure marks a response missing its expected container.
	ErrorTypeStructure ErrorType = "structure"
	// ErrorTypeStorage marks a failed unit or corpus read/write.
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeCapture marks a browser or network interception failure.
	ErrorTypeCapture ErrorType = "capture"
	// ErrorTypeRateLimit marks throttling by the platform.
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error carries a coarse failure classification alongside the underlying
// cause, which stays reachable through errors.Is/As chains.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given classification.
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap annotates err with a classification and message.
func Wrap(err error, errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// TypeOf returns the classification of err, unwrapping as needed, or
// ErrorTypeUnknown for errors created outside this package.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable reports whether the failed operation is worth retrying.
// Capture and rate limit failures are transient; parse, structure and
// storage failures will not improve on a second attempt.
func IsRetryable(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeCapture, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}
