package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a specific error type for better error handling
type ErrorCode string

const (
	// Connection establishment errors
	ErrCodeConnectFailed   ErrorCode = "CONNECT_FAILED"
	ErrCodeTimeoutExceeded ErrorCode = "TIMEOUT_EXCEEDED"

	// Dispatch errors
	ErrCodeUnsupportedScheme ErrorCode = "UNSUPPORTED_SCHEME"
	ErrCodeInvalidURL        ErrorCode = "INVALID_URL"

	// Pool lifecycle errors
	ErrCodePoolClosed    ErrorCode = "POOL_CLOSED"
	ErrCodePoolExhausted ErrorCode = "POOL_EXHAUSTED"

	// Infrastructure errors
	ErrCodeConfigLoad    ErrorCode = "CONFIG_LOAD_FAILED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// PoolError represents a structured error with context
type PoolError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Component string                 `json:"component,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Cause     error                  `json:"-"` // Original error
}

// Error implements the error interface
func (e *PoolError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *PoolError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error code
func (e *PoolError) Is(target error) bool {
	if t, ok := target.(*PoolError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithMetadata adds metadata to the error
func (e *PoolError) WithMetadata(key string, value interface{}) *PoolError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsRetryable returns true if the error might be resolved by retrying.
// The pool itself never retries; callers may consult this for their own
// retry policy.
func (e *PoolError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeTimeoutExceeded, ErrCodePoolExhausted:
		return true
	default:
		return false
	}
}

// NewError creates a new PoolError
func NewError(code ErrorCode, component, message string) *PoolError {
	return &PoolError{
		Code:      code,
		Component: component,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewErrorWithCause creates a new PoolError with an underlying cause.
// A nil cause is tolerated; the error then carries no details.
func NewErrorWithCause(code ErrorCode, component, message string, cause error) *PoolError {
	e := &PoolError{
		Code:      code,
		Component: component,
		Message:   message,
		Timestamp: time.Now(),
	}
	if cause != nil {
		e.Cause = cause
		e.Details = cause.Error()
	}
	return e
}

// Common error constructors for frequently used errors

// NewConnectFailedError creates an error for a failed socket connect.
// Covers missing socket paths, refused connections and permission errors.
func NewConnectFailedError(destination string, cause error) *PoolError {
	return NewErrorWithCause(
		ErrCodeConnectFailed,
		"transport",
		fmt.Sprintf("Failed to connect to %s", destination),
		cause,
	).WithMetadata("destination", destination)
}

// NewTimeoutError creates an error for a connect or read that exceeded
// the configured timeout. Kept distinct from CONNECT_FAILED so callers
// can apply different retry policy upstream.
func NewTimeoutError(destination string, cause error) *PoolError {
	return NewErrorWithCause(
		ErrCodeTimeoutExceeded,
		"transport",
		fmt.Sprintf("Timed out connecting to %s", destination),
		cause,
	).WithMetadata("destination", destination)
}

// NewUnsupportedSchemeError creates an error for a URL scheme with no
// registry entry. Raised at dispatch time, before any socket is touched.
func NewUnsupportedSchemeError(scheme string) *PoolError {
	return NewError(
		ErrCodeUnsupportedScheme,
		"manager",
		fmt.Sprintf("No pool registered for scheme %q", scheme),
	).WithMetadata("scheme", scheme)
}

// NewInvalidURLError creates an error for a request URL that could not
// be parsed
func NewInvalidURLError(rawurl string, cause error) *PoolError {
	return NewErrorWithCause(
		ErrCodeInvalidURL,
		"manager",
		fmt.Sprintf("Invalid request URL %q", rawurl),
		cause,
	)
}

// NewPoolClosedError creates an error for an operation on a closed pool
func NewPoolClosedError(destination string) *PoolError {
	return NewError(
		ErrCodePoolClosed,
		"pool",
		fmt.Sprintf("Pool for %s is closed", destination),
	).WithMetadata("destination", destination)
}

// NewPoolExhaustedError creates an error when connection creation is
// throttled and the caller's context expires before a slot frees up
func NewPoolExhaustedError(destination string, cause error) *PoolError {
	return NewErrorWithCause(
		ErrCodePoolExhausted,
		"pool",
		fmt.Sprintf("No connection available for %s", destination),
		cause,
	).WithMetadata("destination", destination)
}

// Helper functions

// IsPoolError checks if an error is a PoolError
func IsPoolError(err error) bool {
	var poolErr *PoolError
	return errors.As(err, &poolErr)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var poolErr *PoolError
	if errors.As(err, &poolErr) {
		return poolErr.Code
	}
	return ErrCodeInternalError
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var poolErr *PoolError
	if errors.As(err, &poolErr) {
		return poolErr.IsRetryable()
	}
	return false
}
