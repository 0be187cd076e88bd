package errors

import (
	stderrors "errors"
	"fmt"
)

// StoreError is the structured error type for storekb.
// It carries enough context for logging, retry decisions and user display.
type StoreError struct {
	// Code is the unique error code (e.g., "ERR_606_ORDER_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	Category Category
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is matches another StoreError by code, so errors.Is works against the
// sentinel-like values built with New.
func (e *StoreError) Is(target error) bool {
	if t, ok := target.(*StoreError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *StoreError) WithDetail(key, value string) *StoreError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *StoreError) WithSuggestion(suggestion string) *StoreError {
	e.Suggestion = suggestion
	return e
}

// WithRetryable overrides the retryable flag derived from the code.
func (e *StoreError) WithRetryable(retryable bool) *StoreError {
	e.Retryable = retryable
	return e
}

// New creates a new StoreError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *StoreError {
	return &StoreError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a StoreError from an existing error.
// The error's message becomes the StoreError message.
func Wrap(code string, err error) *StoreError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *StoreError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *StoreError {
	return New(ErrCodeInvalidInput, message, cause)
}

// NetworkError creates a retryable network-related error.
func NetworkError(message string, cause error) *StoreError {
	return New(ErrCodeNetworkUnavailable, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *StoreError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first StoreError in err's chain.
func As(err error) (*StoreError, bool) {
	var se *StoreError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsRetryable reports whether err's chain holds a retryable StoreError.
func IsRetryable(err error) bool {
	se, ok := As(err)
	return ok && se.Retryable
}

// IsFatal reports whether err's chain holds a fatal StoreError.
func IsFatal(err error) bool {
	se, ok := As(err)
	return ok && se.Severity == SeverityFatal
}

// GetCode extracts the error code, or "" if err holds no StoreError.
func GetCode(err error) string {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category, or "" if err holds no StoreError.
func GetCategory(err error) Category {
	if se, ok := As(err); ok {
		return se.Category
	}
	return ""
}
