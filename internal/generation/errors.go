package generation

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to clients.
const (
	CodeEmptyResponse   = "EMPTY_RESPONSE"
	CodeValidationError = "VALIDATION_ERROR"
	CodeRateLimit       = "RATE_LIMIT"
	CodeAuthError       = "AUTH_ERROR"
	CodeAPIError        = "API_ERROR"
)

// Error is the single failure type returned by Client.Generate.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

func validationError(format string, args ...any) *Error {
	return &Error{Code: CodeValidationError, Message: fmt.Sprintf(format, args...)}
}

// rateLimitType is the provider error type that signals quota exhaustion.
const rateLimitType = "rate_limit_exceeded"

// ProviderError is a non-2xx reply from the provider.
type ProviderError struct {
	Status  int
	Type    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// IsRateLimit reports whether err is a provider rate limit signal.
func IsRateLimit(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Status == http.StatusTooManyRequests || perr.Type == rateLimitType
}

// classify maps a provider or transport failure to a client facing code.
// Only the HTTP status decides the code; the error type affects retries alone.
func classify(err error) string {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return CodeAPIError
	}
	switch {
	case perr.Status == http.StatusTooManyRequests:
		return CodeRateLimit
	case perr.Status == http.StatusUnauthorized:
		return CodeAuthError
	default:
		return CodeAPIError
	}
}

// wrapProviderError converts any failure from the provider call into *Error.
func wrapProviderError(err error) *Error {
	if gerr, ok := AsError(err); ok {
		return gerr
	}
	return &Error{
		Code:    classify(err),
		Message: "Failed to generate content: " + err.Error(),
		Err:     err,
	}
}
