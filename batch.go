package blobbatch

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/operations/batch"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/validation"
)

// DefaultContentType is sent for blobs without a Mime.
const DefaultContentType = "application/octet-stream"

// UploadBatch writes every blob to bucket, re-sending only the blobs whose
// write failed, for at most MaxAttempts rounds.
// An empty bucket selects the client's default bucket.
//
// The returned result is non-nil whenever the batch ran, including alongside
// an exhaustion error; its Remaining field lists the unwritten blobs.
// An empty batch succeeds without issuing any write.
//
// Parameters:
//   - ctx: Passed to every write; once it is done no further round starts
//   - bucket: Target bucket name (must follow S3 naming rules)
//   - blobs: Blobs to write; the slice is not modified
//   - opts: Per-call options (WithProgress, WithBatchMaxAttempts)
func (c *Client) UploadBatch(
	ctx context.Context,
	bucket string,
	blobs []blobtypes.Blob,
	opts ...blobtypes.BatchOption,
) (*blobtypes.BatchResult, error) {
	if c.isClosed() {
		return nil, errors.NewError("uploadBatch", errors.ErrClientClosed)
	}

	if bucket == "" {
		bucket = c.config.DefaultBucket
	}
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidateBlobs(blobs); err != nil {
		return nil, err
	}

	batchCfg := &blobtypes.BatchOptionConfig{}
	for _, opt := range opts {
		opt(batchCfg)
	}

	maxAttempts := c.config.MaxAttempts
	if batchCfg.MaxAttempts > 0 {
		maxAttempts = batchCfg.MaxAttempts
	}

	uploader := batch.New(c.writer, batch.Config{
		MaxAttempts:     maxAttempts,
		Concurrency:     c.config.Concurrency,
		Limiter:         c.limiter,
		Backoff:         c.backoff,
		FailFast:        c.config.FailFast,
		Logger:          c.logger,
		ProgressTracker: batchCfg.ProgressTracker,
	})

	return uploader.Upload(ctx, bucket, withDefaultContentType(blobs))
}

// withDefaultContentType returns blobs, or a copy with DefaultContentType
// filled in where Mime is empty.
func withDefaultContentType(blobs []blobtypes.Blob) []blobtypes.Blob {
	var out []blobtypes.Blob
	for i, b := range blobs {
		if b.Mime != "" {
			continue
		}
		if out == nil {
			out = make([]blobtypes.Blob, len(blobs))
			copy(out, blobs)
		}
		out[i].Mime = DefaultContentType
	}
	if out == nil {
		return blobs
	}
	return out
}
