package blobbatch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
)

// WithRegion sets the storage region.
// If not specified, New uses the region from the AWS credential chain and
// falls back to DefaultRegion.
func WithRegion(region string) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithDisableSSL selects plain HTTP for endpoints given without a scheme.
// Only use this for local testing.
func WithDisableSSL(disableSSL bool) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.DisableSSL = disableSSL
	}
}

// WithCredentials sets static access credentials instead of the default
// credential chain.
func WithCredentials(accessKey, secretKey string) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithMaxRetries sets the SDK's own retry budget for a single write.
// Default is 3. This is independent of the batch round ceiling.
func WithMaxRetries(maxRetries int) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual write requests.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// It takes precedence over WithTimeout.
func WithCustomHTTPClient(client *http.Client) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithDefaultBucket sets the bucket used when UploadBatch is called with an
// empty bucket name.
func WithDefaultBucket(bucket string) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.DefaultBucket = bucket
	}
}

// WithLogger sets the structured logger for batch progress and write failures.
func WithLogger(logger *slog.Logger) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithMaxAttempts sets the number of rounds a batch gets before it fails.
// Default is 3. Values below 1 are ignored.
func WithMaxAttempts(maxAttempts int) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		if maxAttempts > 0 {
			c.MaxAttempts = maxAttempts
		}
	}
}

// WithConcurrency caps the number of writes in flight within a round.
// Default is 0, which dispatches every pending blob at once.
func WithConcurrency(concurrency int) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		if concurrency >= 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithRateLimit caps the number of writes dispatched per second across all
// batches of the client. Default is 0 (unlimited).
func WithRateLimit(perSecond float64) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.RateLimit = perSecond
	}
}

// WithBackoff inserts an exponential delay between rounds.
// Default is no delay.
func WithBackoff(base, maxDelay time.Duration, jitter float64) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Backoff = blobtypes.BackoffConfig{
			Base:   base,
			Max:    maxDelay,
			Jitter: jitter,
		}
	}
}

// WithFailFast ends a batch early, with the usual exhaustion error, after a
// round in which every write failed.
func WithFailFast(failFast bool) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.FailFast = failFast
	}
}

// WithProgress sets a progress tracker for a single UploadBatch call.
func WithProgress(tracker blobtypes.ProgressTracker) blobtypes.BatchOption {
	return func(c *blobtypes.BatchOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithBatchMaxAttempts overrides the round ceiling for a single UploadBatch call.
func WithBatchMaxAttempts(maxAttempts int) blobtypes.BatchOption {
	return func(c *blobtypes.BatchOptionConfig) {
		c.MaxAttempts = maxAttempts
	}
}
