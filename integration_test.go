//go:build integration
// +build integration

package blobbatch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/testutil"
)

// TestIntegrationUploadBatch uploads batches against LocalStack through every backend.
func TestIntegrationUploadBatch(t *testing.T) {
	ctx := context.Background()
	container, s3Client := testutil.SetupLocalStackTest(t)

	bucketName := testutil.GenerateTestBucketName("integration")
	require.NoError(t, testutil.CreateTestBucketInLocalStack(ctx, s3Client, bucketName), "Failed to create test bucket")

	sdkClient, err := blobbatch.New(
		blobbatch.WithRegion(container.Region()),
		blobbatch.WithEndpoint(container.Endpoint()),
		blobbatch.WithForcePathStyle(true),
		blobbatch.WithCredentials("test", "test"),
	)
	require.NoError(t, err)

	minioClient, err := blobbatch.NewMinio(
		blobbatch.WithRegion(container.Region()),
		blobbatch.WithEndpoint(container.Endpoint()),
		blobbatch.WithForcePathStyle(true),
		blobbatch.WithCredentials("test", "test"),
	)
	require.NoError(t, err)

	clients := map[string]*blobbatch.Client{
		"sdk":     sdkClient,
		"wrapped": blobbatch.NewWithClient(s3Client),
		"minio":   minioClient,
	}

	for name, client := range clients {
		t.Run(name, func(t *testing.T) {
			defer client.Close()

			blobs := testutil.GenerateBlobs(name+"/crate", 20)
			result, err := client.UploadBatch(ctx, bucketName, blobs)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Rounds)
			assert.Equal(t, 20, result.Uploaded)

			for _, blob := range blobs {
				body, contentType, err := testutil.ReadObjectFromLocalStack(ctx, s3Client, bucketName, blob.Path)
				require.NoError(t, err)
				assert.Equal(t, blob.Content, body)
				assert.Equal(t, blob.Mime, contentType)
			}
		})
	}

	t.Run("overwrite is idempotent", func(t *testing.T) {
		client := blobbatch.NewWithClient(s3Client)
		blob := blobtypes.Blob{Path: "idempotent/key.json", Mime: "application/json", Content: []byte(`{"v": 2}`)}

		for i := 0; i < 2; i++ {
			_, err := client.UploadBatch(ctx, bucketName, []blobtypes.Blob{blob})
			require.NoError(t, err)
		}

		body, _, err := testutil.ReadObjectFromLocalStack(ctx, s3Client, bucketName, blob.Path)
		require.NoError(t, err)
		assert.Equal(t, blob.Content, body)
	})

	t.Run("missing bucket exhausts", func(t *testing.T) {
		client := blobbatch.NewWithClient(s3Client, blobbatch.WithFailFast(true))
		missing := fmt.Sprintf("%s-missing", bucketName)

		result, err := client.UploadBatch(ctx, missing, testutil.GenerateBlobs("crate", 2))
		require.Error(t, err)

		var exhausted *errors.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 1, exhausted.Attempts)
		assert.Len(t, result.Remaining, 2)
	})
}
