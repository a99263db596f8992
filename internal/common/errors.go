package common

import (
	"errors"
	"fmt"
)

// AppError carries a stable code alongside a human message and the underlying cause.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy for the gateway and pipelines.
var (
	// ErrTransientQuota marks rate/resource exhaustion from the upstream
	// service. This is the only retryable class.
	ErrTransientQuota = errors.New("transient quota exhaustion")
	// ErrRetriesExhausted is a transient failure that survived the full
	// retry budget.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrInvalidInput is a caller error; retrying cannot help.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoImageReturned means the upstream responded without the inline
	// image the contract promises.
	ErrNoImageReturned = errors.New("no image returned")
	// ErrPreconditionFailed means the caller must fix state before retrying.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrDecodeFailure is a per-item failure that never aborts its batch.
	ErrDecodeFailure = errors.New("decode failure")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsTransientQuota reports whether err belongs to the retryable class.
func IsTransientQuota(err error) bool {
	return errors.Is(err, ErrTransientQuota)
}
