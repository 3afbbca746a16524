package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket and key",
			err:  NewObjectError("write", "docs", "a/b.json", base),
			want: "blobbatch.write docs/a/b.json: boom",
		},
		{
			name: "bucket only",
			err:  NewBucketError("uploadBatch", "docs", base),
			want: "blobbatch.uploadBatch bucket docs: boom",
		},
		{
			name: "key only",
			err:  NewError("validateObjectKey", base).WithKey("x"),
			want: "blobbatch.validateObjectKey object x: boom",
		},
		{
			name: "no context",
			err:  NewError("client initialization", base),
			want: "blobbatch.client initialization: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, base)
		})
	}
}

func TestError_WithMessage(t *testing.T) {
	err := NewError("uploadBatch", ErrInvalidInput).WithBucket("b").WithMessage("bucket name cannot be empty")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, IsInvalidInput(err))
	assert.Contains(t, err.Error(), "bucket name cannot be empty")
}

func TestRetryExhaustedError(t *testing.T) {
	var err error = &RetryExhaustedError{
		Bucket:    "rust-docs-rs",
		Attempts:  3,
		Remaining: []string{"c"},
	}

	assert.True(t, IsRetryExhausted(err))
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Contains(t, err.Error(), "1 blob(s) unwritten after 3 attempt(s)")

	wrapped := fmt.Errorf("push: %w", err)
	var exhausted *RetryExhaustedError
	require.True(t, errors.As(wrapped, &exhausted))
	assert.Equal(t, []string{"c"}, exhausted.Remaining)
	assert.Equal(t, CodeRetryExhausted, CodeOf(wrapped))
}

func TestConvertAWSError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "no such bucket",
			err:      &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "gone"},
			sentinel: ErrBucketNotFound,
		},
		{
			name:     "access denied",
			err:      &smithy.GenericAPIError{Code: "AccessDenied"},
			sentinel: ErrAccessDenied,
		},
		{
			name:     "slow down",
			err:      &smithy.GenericAPIError{Code: "SlowDown"},
			sentinel: ErrTooManyRequests,
		},
		{
			name:     "code only in message",
			err:      errors.New("The specified bucket does not exist (NoSuchBucket)"),
			sentinel: ErrBucketNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converted := ConvertAWSError(tt.err)
			assert.ErrorIs(t, converted, tt.sentinel)
			assert.ErrorIs(t, converted, tt.err)
		})
	}

	assert.NoError(t, ConvertAWSError(nil))

	plain := errors.New("something odd")
	assert.Same(t, plain, ConvertAWSError(plain))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "throttled", err: &smithy.GenericAPIError{Code: "SlowDown"}, want: true},
		{name: "server fault", err: &smithy.GenericAPIError{Code: "Weird", Fault: smithy.FaultServer}, want: true},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied", Fault: smithy.FaultClient}, want: false},
		{name: "sentinel timeout", err: fmt.Errorf("x: %w", ErrTimeout), want: true},
		{name: "sentinel bucket missing", err: ErrBucketNotFound, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "unclassified", err: errors.New("mystery"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, CodeInvalidInput, CodeOf(NewError("validateBucketName", ErrInvalidBucketName)))
	assert.Equal(t, CodeForbidden, CodeOf(ConvertAWSError(&smithy.GenericAPIError{Code: "AccessDenied"})))
	assert.Equal(t, CodeCanceled, CodeOf(NewBucketError("uploadBatch", "b", context.Canceled)))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("x")))
}
