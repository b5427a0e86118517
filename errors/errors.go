// Package errors provides the unified error type for the marketdata core.
// Remote failures are classified precisely enough that a caller can tell
// "try again later" (rate limit) from "fix configuration" (auth) from a
// transient network problem, without inspecting transport internals.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// RateLimited creates a new AppError for an exhausted rate limit or quota.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "API rate limit reached. Please wait before trying again.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// Timeout creates a new AppError for a request that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// NetworkUnreachable creates a new AppError for a connection-level failure.
func NetworkUnreachable(service string) *AppError {
	return &AppError{
		Code: ErrCodeNetworkUnreachable, Message: fmt.Sprintf("Unable to reach %s. Please check your connection.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// AuthInvalid creates a new AppError for rejected or missing credentials.
func AuthInvalid(service string) *AppError {
	return &AppError{
		Code: ErrCodeAuthInvalid, Message: fmt.Sprintf("Authentication with %s failed. Please check the configured API key.", service),
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
		Details: map[string]any{"service": service},
	}
}

// Upstream creates a new AppError for any other remote collaborator failure.
func Upstream(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeUpstreamFailed, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for malformed input or a failed validation gate.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Unsupported creates a new AppError for an operation the provider cannot perform.
func Unsupported(operation, providerID string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupported, Message: fmt.Sprintf("The %q provider does not support %s.", providerID, operation),
		HTTPStatus: http.StatusNotImplemented, Retryable: false,
		Details: map[string]any{"provider": providerID, "operation": operation},
	}
}

// NotConfigured creates a new AppError for a provider missing credentials or data.
func NotConfigured(providerID string) *AppError {
	return &AppError{
		Code: ErrCodeNotConfigured, Message: fmt.Sprintf("The %q provider is not configured.", providerID),
		HTTPStatus: http.StatusPreconditionFailed, Retryable: false,
		Details: map[string]any{"provider": providerID},
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
