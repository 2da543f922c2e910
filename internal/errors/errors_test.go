package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeMatching(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("dial unix /tmp/x.sock: no such file or directory")
	err := NewConnectFailedError("http+unix:///tmp/x.sock", cause)

	assert.Equal(t, ErrCodeConnectFailed, GetErrorCode(err))
	assert.True(t, errors.Is(err, &PoolError{Code: ErrCodeConnectFailed}))
	assert.False(t, errors.Is(err, &PoolError{Code: ErrCodeTimeoutExceeded}))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWrappedErrorsResolve(t *testing.T) {
	t.Parallel()

	inner := NewTimeoutError("http://example.com:80", fmt.Errorf("i/o timeout"))
	outer := fmt.Errorf("request failed: %w", inner)

	assert.Equal(t, ErrCodeTimeoutExceeded, GetErrorCode(outer))
	assert.True(t, IsPoolError(outer))
	assert.True(t, IsRetryable(outer))
}

func TestNilCauseTolerated(t *testing.T) {
	t.Parallel()

	err := NewInvalidURLError("api.example.com/path", nil)
	assert.Equal(t, ErrCodeInvalidURL, GetErrorCode(err))
	assert.Empty(t, err.Details)
	assert.Nil(t, errors.Unwrap(err))
}

func TestRetryableClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, NewTimeoutError("d", fmt.Errorf("t")).IsRetryable())
	assert.True(t, NewPoolExhaustedError("d", fmt.Errorf("t")).IsRetryable())
	assert.False(t, NewConnectFailedError("d", fmt.Errorf("t")).IsRetryable())
	assert.False(t, NewUnsupportedSchemeError("ftp").IsRetryable())
	assert.False(t, IsRetryable(fmt.Errorf("plain error")))
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	err := NewUnsupportedSchemeError("ftp")
	assert.Equal(t, "ftp", err.Metadata["scheme"])

	err.WithMetadata("extra", 42)
	assert.Equal(t, 42, err.Metadata["extra"])
}
