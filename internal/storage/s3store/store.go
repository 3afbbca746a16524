// Package s3store implements blobtypes.Writer on top of the AWS SDK v2 S3 client.
package s3store

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/s3api"
)

// Store writes blobs with a single PutObject per call.
// Transport-level retries are left to the SDK client.
type Store struct {
	s3Client s3api.S3API
}

// New creates a new Store.
func New(s3Client s3api.S3API) *Store {
	return &Store{
		s3Client: s3Client,
	}
}

// Write uploads body to bucket/key with the given content type.
func (s *Store) Write(ctx context.Context, bucket, key, contentType string, body []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.s3Client.PutObject(ctx, input); err != nil {
		return errors.NewObjectError("write", bucket, key, errors.ConvertAWSError(err))
	}

	return nil
}

var _ blobtypes.Writer = (*Store)(nil)
