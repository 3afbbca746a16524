package errors

import (
	"context"
	"errors"
)

// ErrorCode is a stable, string-based classification of a failure.
// Codes are meant for CLI output and machine-readable reports.
type ErrorCode string

const (
	// CodeRetryExhausted indicates blobs remained unwritten after the attempt ceiling.
	CodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNotFound indicates the target bucket does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeForbidden indicates the credentials lack permission for the write.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeRateLimit indicates the store throttled the request.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeCanceled indicates the caller canceled the operation.
	CodeCanceled ErrorCode = "CANCELED"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// CodeOf classifies err. A nil error has an empty code.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case IsRetryExhausted(err):
		return CodeRetryExhausted
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrTooManyRequests):
		return CodeRateLimit
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrConnection):
		return CodeNetwork
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	}
	return CodeUnknown
}
