// Package testutil provides common test helper functions.
package testutil

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
)

// GenerateRandomData generates random bytes of the specified size.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		panic(fmt.Sprintf("failed to generate random data: %v", err))
	}
	return data
}

// GenerateTestKey generates a test object key with optional prefix.
// This helps ensure test isolation by using unique keys.
func GenerateTestKey(prefix string) string {
	timestamp := time.Now().UnixNano()
	random := mathrand.Int63n(100000)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%stest-object-%d-%d", prefix, timestamp, random)
}

// GenerateTestBucketName generates a valid test bucket name.
// Bucket names must be DNS-compliant and globally unique.
func GenerateTestBucketName(prefix string) string {
	timestamp := time.Now().Unix()
	random := mathrand.Int31n(10000)
	name := fmt.Sprintf("%s-%d-%d", prefix, timestamp, random)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// GenerateBlobs builds count JSON blobs named prefix-000.json, prefix-001.json, ...
func GenerateBlobs(prefix string, count int) []blobtypes.Blob {
	blobs := make([]blobtypes.Blob, count)
	for i := range blobs {
		blobs[i] = blobtypes.Blob{
			Path:    fmt.Sprintf("%s-%03d.json", prefix, i),
			Mime:    "application/json",
			Content: []byte(fmt.Sprintf(`{"n": %d}`, i)),
		}
	}
	return blobs
}
