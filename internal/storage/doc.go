// Package storage groups the blobtypes.Writer implementations.
//
//   - s3store: AWS SDK v2 PutObject
//   - miniostore: minio-go PutObject for S3-compatible endpoints
package storage
