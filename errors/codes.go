package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Remote collaborator errors.
const (
	// ErrCodeRateLimited indicates the remote API quota or rate limit was hit.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeNetworkUnreachable indicates a connection-level failure (DNS, refused).
	ErrCodeNetworkUnreachable ErrorCode = "NETWORK_UNREACHABLE"
	// ErrCodeAuthInvalid indicates missing or rejected credentials.
	ErrCodeAuthInvalid ErrorCode = "AUTH_INVALID"
	// ErrCodeUpstreamFailed indicates any other failure from the remote collaborator.
	ErrCodeUpstreamFailed ErrorCode = "UPSTREAM_FAILED"
)

// Local errors.
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates malformed input or a failed validation gate.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeUnsupported indicates an operation the provider does not implement.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
	// ErrCodeNotConfigured indicates the provider is missing required credentials or data.
	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// retryableCodes are the codes a caller may reasonably retry later.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeRateLimited:        true,
	ErrCodeTimeout:            true,
	ErrCodeNetworkUnreachable: true,
	ErrCodeUpstreamFailed:     true,
}

// IsRetryableCode reports whether the code represents a retryable condition.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
