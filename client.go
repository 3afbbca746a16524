package blobbatch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/backoff"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/operations/batch"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/storage/miniostore"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/storage/s3store"
)

// DefaultRegion is used when neither the options nor the AWS credential chain
// provide a region.
const DefaultRegion = "us-west-1"

// Client uploads blob batches through a single storage writer.
// It is safe for concurrent use; concurrent UploadBatch calls share the
// writer, the rate limiter and the logger.
type Client struct {
	// writer performs the individual object writes
	writer blobtypes.Writer

	// rawClient holds the AWS S3 client when the client was built by New
	rawClient *s3.Client

	// config holds the resolved client options
	config blobtypes.ClientConfig

	// awsConfig holds the AWS configuration when the client was built by New
	awsConfig aws.Config

	limiter *rate.Limiter
	backoff backoff.Strategy
	logger  *slog.Logger

	// mu protects closed
	mu     sync.RWMutex
	closed bool
}

func defaultClientConfig() *blobtypes.ClientConfig {
	return &blobtypes.ClientConfig{
		MaxRetries:  3,
		MaxAttempts: batch.DefaultMaxAttempts,
	}
}

func applyOptions(opts []blobtypes.Option) *blobtypes.ClientConfig {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}
	return clientCfg
}

// New creates a Client that writes through the AWS SDK v2 S3 client.
// It loads AWS credentials using the default credential chain unless static
// credentials or a custom AWS configuration are supplied.
//
// Example:
//
//	client, err := blobbatch.New(
//	    blobbatch.WithRegion("us-west-1"),
//	    blobbatch.WithEndpoint("http://localhost:4566"),
//	    blobbatch.WithForcePathStyle(true),
//	)
func New(opts ...blobtypes.Option) (*Client, error) {
	clientCfg := applyOptions(opts)

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	if clientCfg.AccessKey != "" {
		cfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(clientCfg.AccessKey, clientCfg.SecretKey, ""),
		)
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.Endpoint != "" {
		endpoint := endpointURL(clientCfg.Endpoint, clientCfg.DisableSSL)
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		httpClient := clientCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	case clientCfg.Timeout > 0:
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	client := newClient(s3store.New(s3Client), clientCfg)
	client.rawClient = s3Client
	client.awsConfig = cfg
	return client, nil
}

// NewMinio creates a Client that writes through minio-go, for S3-compatible
// services. WithEndpoint is required; WithCredentials, WithRegion,
// WithDisableSSL and WithForcePathStyle apply.
func NewMinio(opts ...blobtypes.Option) (*Client, error) {
	clientCfg := applyOptions(opts)

	region := clientCfg.Region
	if region == "" {
		region = DefaultRegion
	}

	store, err := miniostore.New(miniostore.Config{
		Endpoint:  clientCfg.Endpoint,
		AccessKey: clientCfg.AccessKey,
		SecretKey: clientCfg.SecretKey,
		Region:    region,
		Secure:    !clientCfg.DisableSSL,
		PathStyle: clientCfg.ForcePathStyle,
	})
	if err != nil {
		return nil, err
	}

	return newClient(store, clientCfg), nil
}

// NewWithClient creates a Client around a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...blobtypes.Option) *Client {
	return newClient(s3store.New(s3Client), applyOptions(opts))
}

// NewWithWriter creates a Client around any blobtypes.Writer.
func NewWithWriter(writer blobtypes.Writer, opts ...blobtypes.Option) *Client {
	return newClient(writer, applyOptions(opts))
}

func newClient(writer blobtypes.Writer, clientCfg *blobtypes.ClientConfig) *Client {
	logger := clientCfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		writer:  writer,
		config:  *clientCfg,
		limiter: batch.NewLimiter(clientCfg.RateLimit),
		backoff: backoff.New(clientCfg.Backoff),
		logger:  logger,
	}
}

// endpointURL adds a scheme to a bare host[:port] endpoint.
func endpointURL(endpoint string, disableSSL bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if disableSSL {
		return "http://" + endpoint
	}
	return "https://" + endpoint
}

// Close marks the client closed; later UploadBatch calls fail with
// errors.ErrClientClosed. Batches already running are not interrupted.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
