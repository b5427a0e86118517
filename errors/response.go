package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON structure returned to clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or ErrCodeInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsRateLimited reports whether err carries the rate-limit flag.
func IsRateLimited(err error) bool { return CodeOf(err) == ErrCodeRateLimited }

// IsTimeout reports whether err is a timeout failure.
func IsTimeout(err error) bool { return CodeOf(err) == ErrCodeTimeout }

// IsAuthInvalid reports whether err is a credential failure.
func IsAuthInvalid(err error) bool { return CodeOf(err) == ErrCodeAuthInvalid }

// IsUnsupported reports whether err marks an unimplemented provider operation.
func IsUnsupported(err error) bool { return CodeOf(err) == ErrCodeUnsupported }
