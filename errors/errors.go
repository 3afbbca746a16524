// Package errors provides error types and handling for batch blob uploads.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aws/smithy-go"
)

// Error represents a storage operation error with context about the operation that failed.
// It wraps the underlying storage client error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "write", "uploadBatch")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error from the storage client or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("blobbatch.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("blobbatch.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("blobbatch.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("blobbatch.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrRetryExhausted indicates blobs were still unwritten after the attempt ceiling
	ErrRetryExhausted = errors.New("blobbatch: retry attempts exhausted")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("blobbatch: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("blobbatch: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("blobbatch: invalid object key")

	// ErrBucketNotFound indicates that the target bucket does not exist
	ErrBucketNotFound = errors.New("blobbatch: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("blobbatch: access denied")

	// ErrTooManyRequests indicates that the request rate is too high
	ErrTooManyRequests = errors.New("blobbatch: too many requests")

	// ErrTimeout indicates that the operation timed out
	ErrTimeout = errors.New("blobbatch: operation timeout")

	// ErrConnection indicates a connection error
	ErrConnection = errors.New("blobbatch: connection error")

	// ErrClientClosed indicates the client was used after Close
	ErrClientClosed = errors.New("blobbatch: client closed")
)

// RetryExhaustedError is returned when a batch still has unwritten blobs after
// the attempt ceiling. It is the only failure the batch core produces.
type RetryExhaustedError struct {
	// Bucket is the target bucket of the batch
	Bucket string

	// Attempts is the number of rounds that were dispatched
	Attempts int

	// Remaining holds the keys of the blobs that were never confirmed written
	Remaining []string
}

// Error implements the error interface.
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("blobbatch.uploadBatch bucket %s: %d blob(s) unwritten after %d attempt(s): %v",
		e.Bucket, len(e.Remaining), e.Attempts, ErrRetryExhausted)
}

// Unwrap makes errors.Is(err, ErrRetryExhausted) hold.
func (e *RetryExhaustedError) Unwrap() error {
	return ErrRetryExhausted
}

// IsRetryExhausted checks if an error indicates the attempt ceiling was reached.
func IsRetryExhausted(err error) bool {
	return errors.Is(err, ErrRetryExhausted)
}

// IsInvalidInput checks if an error indicates invalid input.
// Bucket-name and object-key validation failures count as invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidObjectKey)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsRetryable reports whether a write failure looks transient.
// The batch uploader re-queues every failure regardless; this only feeds logging.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch {
	case errors.Is(err, ErrTooManyRequests), errors.Is(err, ErrTimeout), errors.Is(err, ErrConnection):
		return true
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrBucketNotFound), IsInvalidInput(err):
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "SlowDown", "Throttling", "ThrottlingException", "RequestTimeout",
			"RequestLimitExceeded", "TooManyRequestsException", "InternalError",
			"ServiceUnavailable":
			return true
		}
		return apiErr.ErrorFault() == smithy.FaultServer
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// ConvertAWSError maps storage client errors to sentinel errors where possible.
// The original error is kept in the chain so callers can still inspect it.
func ConvertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var sentinel error
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		sentinel = sentinelForCode(apiErr.ErrorCode())
	}

	if sentinel == nil {
		// minio-go and plain HTTP errors only carry the code in the message
		msg := err.Error()
		for _, code := range []string{"NoSuchBucket", "AccessDenied", "SlowDown", "RequestTimeout"} {
			if strings.Contains(msg, code) {
				sentinel = sentinelForCode(code)
				break
			}
		}
	}

	if sentinel == nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			if netErr.Timeout() {
				sentinel = ErrTimeout
			} else {
				sentinel = ErrConnection
			}
		}
	}

	if sentinel == nil {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

func sentinelForCode(code string) error {
	switch code {
	case "NoSuchBucket":
		return ErrBucketNotFound
	case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return ErrAccessDenied
	case "SlowDown", "Throttling", "ThrottlingException", "TooManyRequestsException":
		return ErrTooManyRequests
	case "RequestTimeout":
		return ErrTimeout
	}
	return nil
}
