// Package validation checks bucket names, object keys and content types
// before any write is dispatched, so a malformed batch fails without
// touching the store.
package validation

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
)

const maxKeyLength = 1024

// ValidateBucketName validates that a bucket name is DNS-compliant according to S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	fail := func(msg string) error {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage(msg)
	}

	if bucket == "" {
		return fail("bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return fail("bucket name must be between 3 and 63 characters long")
	}
	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return fail("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}
	if strings.ContainsAny(bucket[:1], ".-") || strings.ContainsAny(bucket[len(bucket)-1:], ".-") {
		return fail("bucket name cannot start or end with a hyphen or dot")
	}
	if strings.Contains(bucket, "..") {
		return fail("bucket name cannot contain two adjacent periods")
	}
	if isIPAddress(bucket) {
		return fail("bucket name cannot be formatted as an IP address")
	}

	return nil
}

// ValidateObjectKey validates that an object key is valid according to S3 rules.
// This includes rejecting path traversal and control characters.
func ValidateObjectKey(key string) error {
	fail := func(msg string) error {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage(msg)
	}

	if key == "" {
		return fail("object key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return fail(fmt.Sprintf("object key cannot exceed %d bytes", maxKeyLength))
	}
	if hasPathTraversal(key) {
		return fail("object key cannot contain path traversal sequences")
	}
	for _, char := range key {
		if unicode.IsControl(char) {
			return fail("object key cannot contain control characters")
		}
	}

	return nil
}

// ValidateContentType rejects content types that cannot be sent as an HTTP
// header value. The value is otherwise opaque and passed through unchanged.
func ValidateContentType(contentType string) error {
	for _, char := range contentType {
		if char != '\t' && unicode.IsControl(char) {
			return errors.NewError("validateContentType", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("content type %q cannot contain control characters", contentType))
		}
	}
	return nil
}

// ValidateBlobs validates every blob in a batch and returns the first failure.
// Duplicate keys are allowed; the last successful write wins.
func ValidateBlobs(blobs []blobtypes.Blob) error {
	for i := range blobs {
		if err := ValidateObjectKey(blobs[i].Path); err != nil {
			return err
		}
		if err := ValidateContentType(blobs[i].Mime); err != nil {
			if e, ok := err.(*errors.Error); ok {
				return e.WithKey(blobs[i].Path)
			}
			return err
		}
	}
	return nil
}

func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// isIPAddress reports whether s looks like a dotted IPv4 address.
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
		}
	}
	return true
}

// hasPathTraversal rejects ".." segments and absolute paths.
func hasPathTraversal(key string) bool {
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, "\\") {
		return true
	}
	if len(key) >= 3 && key[1] == ':' && (key[2] == '\\' || key[2] == '/') {
		return true
	}
	for _, segment := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if segment == ".." {
			return true
		}
	}
	return strings.HasPrefix(path.Clean(key), "..")
}
