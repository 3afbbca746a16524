package batch

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/backoff"
)

// DefaultMaxAttempts is the number of rounds a batch gets before it fails.
const DefaultMaxAttempts = 3

// Config holds the uploader settings.
type Config struct {
	// MaxAttempts is the round ceiling; values below 1 mean DefaultMaxAttempts
	MaxAttempts int

	// Concurrency caps in-flight writes within a round; 0 means every pending blob at once
	Concurrency int

	// Limiter gates every dispatched write; nil means unlimited.
	// It may be shared between uploaders to cap a whole client.
	Limiter *rate.Limiter

	// Backoff is consulted between rounds; nil means no delay
	Backoff backoff.Strategy

	// FailFast ends the batch after a round in which every write failed
	FailFast bool

	// Logger receives per-round and per-failure logs; nil discards them
	Logger *slog.Logger

	// ProgressTracker receives blob-count progress; may be nil
	ProgressTracker blobtypes.ProgressTracker
}

// Uploader drives the rounds of one or more batches.
// It holds no per-batch state and is safe for concurrent use when its writer
// and progress tracker are.
type Uploader struct {
	writer  blobtypes.Writer
	config  Config
	logger  *slog.Logger
	limiter *rate.Limiter
	wait    func(context.Context, time.Duration) error
}

// outcome is the classification of one write in a round.
// issued is false when the blob never reached the writer.
type outcome struct {
	blob   blobtypes.Blob
	err    error
	issued bool
}

// New creates a new Uploader writing through writer.
func New(writer blobtypes.Writer, config Config) *Uploader {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.Concurrency < 0 {
		config.Concurrency = 0
	}
	if config.Backoff == nil {
		config.Backoff = backoff.None{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Uploader{
		writer:  writer,
		config:  config,
		logger:  logger,
		limiter: config.Limiter,
		wait:    backoff.Wait,
	}
}

// Upload writes every blob to bucket, retrying only the blobs that failed,
// for at most MaxAttempts rounds.
//
// The returned result is never nil. On failure the error is a
// *errors.RetryExhaustedError, or an *errors.Error wrapping ctx.Err() if the
// context ended while blobs were still pending.
func (u *Uploader) Upload(ctx context.Context, bucket string, blobs []blobtypes.Blob) (*blobtypes.BatchResult, error) {
	startTime := time.Now()
	result := &blobtypes.BatchResult{
		BatchID: uuid.NewString(),
	}
	logger := u.logger.With("batch_id", result.BatchID, "bucket", bucket)
	total := int64(len(blobs))

	if len(blobs) == 0 {
		u.complete()
		result.Duration = time.Since(startTime)
		return result, nil
	}

	pending := blobs
	attempts := 0
	for {
		attempts++
		result.Rounds = attempts
		logger.Debug("starting upload round", "round", attempts, "pending", len(pending))

		failed, issued := u.round(ctx, logger, bucket, attempts, pending, result, total)
		result.Writes += issued

		if len(failed) == 0 {
			logger.Info("batch uploaded", "rounds", attempts, "blobs", len(blobs), "writes", result.Writes)
			u.complete()
			result.Duration = time.Since(startTime)
			return result, nil
		}

		stalled := len(failed) == len(pending)
		if attempts >= u.config.MaxAttempts || (u.config.FailFast && stalled) {
			return u.exhausted(logger, bucket, attempts, failed, result, startTime)
		}

		if err := u.wait(ctx, u.config.Backoff.Delay(attempts)); err != nil {
			result.Remaining = failed
			result.Duration = time.Since(startTime)
			batchErr := errors.NewBucketError("uploadBatch", bucket, err)
			logger.Warn("batch interrupted", "round", attempts, "remaining", len(failed), "error", err)
			u.fail(batchErr)
			return result, batchErr
		}

		pending = failed
	}
}

// round dispatches one write per pending blob and collects every outcome in
// completion order. It returns a fresh slice holding the blobs that failed and
// the number of writes actually issued.
func (u *Uploader) round(
	ctx context.Context,
	logger *slog.Logger,
	bucket string,
	round int,
	pending []blobtypes.Blob,
	result *blobtypes.BatchResult,
	total int64,
) ([]blobtypes.Blob, int) {
	// Buffered so no writer goroutine blocks once the driver stops receiving
	outcomes := make(chan outcome, len(pending))

	var slots chan struct{}
	if u.config.Concurrency > 0 {
		slots = make(chan struct{}, u.config.Concurrency)
	}

	go func() {
		for _, blob := range pending {
			if u.limiter != nil {
				if err := u.limiter.Wait(ctx); err != nil {
					outcomes <- outcome{blob: blob, err: err}
					continue
				}
			}
			if slots != nil {
				slots <- struct{}{}
			}

			go func(blob blobtypes.Blob) {
				err := u.writer.Write(ctx, bucket, blob.Path, blob.Mime, blob.Content)
				if slots != nil {
					<-slots
				}
				outcomes <- outcome{blob: blob, err: err, issued: true}
			}(blob)
		}
	}()

	var failed []blobtypes.Blob
	issued := 0
	for range pending {
		out := <-outcomes
		if out.issued {
			issued++
		}
		if out.err != nil {
			logger.Warn("blob write failed",
				"round", round,
				"key", out.blob.Path,
				"retryable", errors.IsRetryable(out.err),
				"error", out.err,
			)
			failed = append(failed, out.blob)
			continue
		}

		result.Uploaded++
		result.Bytes += int64(len(out.blob.Content))
		if u.config.ProgressTracker != nil {
			u.config.ProgressTracker.Update(int64(result.Uploaded), total)
		}
	}

	logger.Debug("upload round finished", "round", round, "written", len(pending)-len(failed), "failed", len(failed))
	return failed, issued
}

func (u *Uploader) exhausted(
	logger *slog.Logger,
	bucket string,
	attempts int,
	failed []blobtypes.Blob,
	result *blobtypes.BatchResult,
	startTime time.Time,
) (*blobtypes.BatchResult, error) {
	keys := make([]string, len(failed))
	for i := range failed {
		keys[i] = failed[i].Path
	}

	err := &errors.RetryExhaustedError{
		Bucket:    bucket,
		Attempts:  attempts,
		Remaining: keys,
	}
	logger.Error("batch upload failed", "rounds", attempts, "remaining", len(failed))

	result.Remaining = failed
	result.Duration = time.Since(startTime)
	u.fail(err)
	return result, err
}

func (u *Uploader) complete() {
	if u.config.ProgressTracker != nil {
		u.config.ProgressTracker.Complete()
	}
}

func (u *Uploader) fail(err error) {
	if u.config.ProgressTracker != nil {
		u.config.ProgressTracker.Error(err)
	}
}

// NewLimiter builds a limiter allowing perSecond writes with a burst of the
// same size. It returns nil when perSecond is not positive.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
