// Package miniostore implements blobtypes.Writer on top of minio-go, for
// S3-compatible services such as MinIO, Ceph RGW or LocalStack.
package miniostore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
)

// Store writes blobs with minio-go's PutObject.
type Store struct {
	client *minio.Client
}

// Config holds the connection settings for a MinIO endpoint.
type Config struct {
	// Endpoint is host[:port] or a full URL; a scheme overrides Secure
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
	PathStyle bool
}

// New creates a Store connected to cfg.Endpoint.
func New(cfg Config) (*Store, error) {
	endpoint, secure, err := splitEndpoint(cfg.Endpoint, cfg.Secure)
	if err != nil {
		return nil, err
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, errors.NewError("minio client initialization", err)
	}

	return NewWithClient(client), nil
}

// NewWithClient wraps an existing minio client.
func NewWithClient(client *minio.Client) *Store {
	return &Store{client: client}
}

// Write uploads body to bucket/key with the given content type.
func (s *Store) Write(ctx context.Context, bucket, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(
		ctx,
		bucket,
		key,
		bytes.NewReader(body),
		int64(len(body)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return errors.NewObjectError("write", bucket, key, translateError(err))
	}
	return nil
}

// translateError maps minio's structured error response onto sentinel errors.
func translateError(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "" {
		return errors.ConvertAWSError(err)
	}
	return errors.ConvertAWSError(fmt.Errorf("%s: %w", resp.Code, err))
}

// splitEndpoint strips an optional scheme from endpoint, since minio.New
// expects host[:port].
func splitEndpoint(endpoint string, secure bool) (string, bool, error) {
	if endpoint == "" {
		return "", false, errors.NewError("minio client initialization", errors.ErrInvalidInput).
			WithMessage("endpoint cannot be empty")
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, secure, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, errors.NewError("minio client initialization", err)
	}
	if u.Host == "" {
		return "", false, errors.NewError("minio client initialization", errors.ErrInvalidInput).
			WithMessage("endpoint has no host")
	}
	return u.Host, u.Scheme == "https", nil
}

var _ blobtypes.Writer = (*Store)(nil)
