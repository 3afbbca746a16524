// Package blobtypes provides shared type definitions for the blobbatch module.
package blobtypes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Blob is a single named binary object slated for upload.
// A failed blob is re-submitted by value, so no separate identifier is needed.
type Blob struct {
	// Path is the object key in the bucket
	Path string

	// Mime is the content type sent with the write
	Mime string

	// Content is the object body
	Content []byte
}

// Writer is the storage capability the batch uploader consumes.
// Implementations must tolerate concurrent calls and treat each call as an
// idempotent overwrite of the object at key.
type Writer interface {
	Write(ctx context.Context, bucket, key, contentType string, body []byte) error
}

// WriterFunc adapts a plain function to the Writer interface.
type WriterFunc func(ctx context.Context, bucket, key, contentType string, body []byte) error

// Write calls f.
func (f WriterFunc) Write(ctx context.Context, bucket, key, contentType string, body []byte) error {
	return f(ctx, bucket, key, contentType, body)
}

// ProgressTracker defines the interface for tracking batch progress.
// Update receives the number of blobs confirmed written so far and the batch size.
type ProgressTracker interface {
	// Update is called each time a blob is confirmed written
	Update(uploaded, total int64)

	// Complete is called when every blob has been written
	Complete()

	// Error is called when the batch terminates with unwritten blobs
	Error(err error)
}

// BatchResult describes the outcome of one UploadBatch call.
// It is returned on success and alongside a terminal error.
type BatchResult struct {
	// BatchID correlates the log lines of one call
	BatchID string

	// Rounds is the number of rounds dispatched
	Rounds int

	// Writes is the total number of write requests issued across all rounds
	Writes int

	// Uploaded is the number of blobs confirmed written
	Uploaded int

	// Bytes is the total size of the confirmed blobs
	Bytes int64

	// Remaining is the residual set of blobs that were never confirmed written
	Remaining []Blob

	// Duration is how long the whole call took
	Duration time.Duration
}

// BackoffConfig configures the delay between rounds.
// A zero Base disables the delay.
type BackoffConfig struct {
	// Base is the delay before the second round; it doubles for each later round
	Base time.Duration

	// Max caps the delay
	Max time.Duration

	// Jitter is the fraction of the delay randomly added or removed (0 to 1)
	Jitter float64
}

// ClientConfig holds configuration options for the blobbatch client.
type ClientConfig struct {
	// Region is the storage region
	Region string

	// Endpoint overrides the storage endpoint URL (S3-compatible services, LocalStack)
	Endpoint string

	// ForcePathStyle forces path-style addressing
	ForcePathStyle bool

	// DisableSSL disables TLS for MinIO connections
	DisableSSL bool

	// AccessKey and SecretKey provide static credentials
	AccessKey string
	SecretKey string

	// MaxRetries is the storage client's own transport retry budget
	MaxRetries int

	// Timeout bounds a single write request
	Timeout time.Duration

	// CustomAWSConfig replaces the default credential chain configuration
	CustomAWSConfig *aws.Config

	// CustomHTTPClient replaces the SDK's HTTP client
	CustomHTTPClient *http.Client

	// DefaultBucket is used when UploadBatch is called with an empty bucket
	DefaultBucket string

	// Logger receives structured batch logs; nil discards them
	Logger *slog.Logger

	// MaxAttempts is the round ceiling per batch
	MaxAttempts int

	// Concurrency caps in-flight writes per round; 0 means unbounded
	Concurrency int

	// RateLimit caps dispatched writes per second; 0 means unlimited
	RateLimit float64

	// Backoff configures the delay between rounds
	Backoff BackoffConfig

	// FailFast stops a batch early when a round makes no progress
	FailFast bool
}

// Option is a functional option for configuring the client.
type Option func(*ClientConfig)

// BatchOptionConfig holds per-call configuration for UploadBatch.
type BatchOptionConfig struct {
	// ProgressTracker receives progress updates for this call
	ProgressTracker ProgressTracker

	// MaxAttempts overrides the client-level round ceiling for this call
	MaxAttempts int
}

// BatchOption is a functional option for a single UploadBatch call.
type BatchOption func(*BatchOptionConfig)
