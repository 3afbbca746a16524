package blobbatch

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/testutil"
)

// TestClient_New tests the New() constructor with various options.
func TestClient_New(t *testing.T) {
	tests := []struct {
		name string
		opts []blobtypes.Option
	}{
		{
			name: "default configuration",
			opts: nil,
		},
		{
			name: "with region option",
			opts: []blobtypes.Option{WithRegion("us-west-2")},
		},
		{
			name: "with multiple options",
			opts: []blobtypes.Option{WithRegion("us-east-1"), WithMaxRetries(5), WithTimeout(time.Second)},
		},
		{
			name: "with static credentials",
			opts: []blobtypes.Option{WithCredentials("AKIDEXAMPLE", "secret")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.writer)
			assert.NotNil(t, client.rawClient)
			assert.NotEmpty(t, client.awsConfig.Region)
		})
	}
}

func TestClient_New_EndpointAndRegion(t *testing.T) {
	client, err := New(
		WithRegion("eu-west-1"),
		WithEndpoint("localhost:4566"),
		WithDisableSSL(true),
		WithForcePathStyle(true),
		WithCredentials("test", "test"),
	)
	require.NoError(t, err)

	opts := client.rawClient.Options()
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.Equal(t, "http://localhost:4566", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	creds, err := client.awsConfig.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestClient_New_CustomAWSConfig(t *testing.T) {
	custom := aws.Config{Region: ""}
	httpClient := &http.Client{Timeout: 3 * time.Second}

	client, err := New(WithAWSConfig(&custom), WithCustomHTTPClient(httpClient))
	require.NoError(t, err)

	assert.Equal(t, DefaultRegion, client.awsConfig.Region)
	assert.NotNil(t, client.rawClient.Options().HTTPClient)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "https://s3.example.com", endpointURL("s3.example.com", false))
	assert.Equal(t, "http://localhost:9000", endpointURL("localhost:9000", true))
	assert.Equal(t, "https://already", endpointURL("https://already", true))
}

func TestClient_NewMinio(t *testing.T) {
	client, err := NewMinio(
		WithEndpoint("http://localhost:9000"),
		WithCredentials("minioadmin", "minioadmin"),
		WithForcePathStyle(true),
	)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Nil(t, client.rawClient)

	_, err = NewMinio()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestClient_Options(t *testing.T) {
	client := NewWithWriter(testutil.NewMemoryWriter(),
		WithDefaultBucket("rust-docs-rs"),
		WithMaxAttempts(5),
		WithMaxAttempts(0),
		WithConcurrency(8),
		WithConcurrency(-1),
		WithRateLimit(25),
		WithBackoff(100*time.Millisecond, time.Second, 0.2),
		WithFailFast(true),
	)

	assert.Equal(t, "rust-docs-rs", client.config.DefaultBucket)
	assert.Equal(t, 5, client.config.MaxAttempts)
	assert.Equal(t, 8, client.config.Concurrency)
	assert.True(t, client.config.FailFast)
	assert.Equal(t, blobtypes.BackoffConfig{Base: 100 * time.Millisecond, Max: time.Second, Jitter: 0.2}, client.config.Backoff)
	require.NotNil(t, client.limiter)
	assert.InDelta(t, 25, float64(client.limiter.Limit()), 0.001)
	assert.NotNil(t, client.logger)

	defaults := NewWithWriter(testutil.NewMemoryWriter())
	assert.Equal(t, 3, defaults.config.MaxAttempts)
	assert.Equal(t, 3, defaults.config.MaxRetries)
	assert.Equal(t, 0, defaults.config.Concurrency)
	assert.Nil(t, defaults.limiter)
}

func TestClient_Close(t *testing.T) {
	client := NewWithWriter(testutil.NewMemoryWriter())
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.UploadBatch(context.Background(), "rust-docs-rs", testutil.GenerateBlobs("c", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrClientClosed)
}

// TestClient_ConcurrentUse tests that one client serves concurrent batches.
func TestClient_ConcurrentUse(t *testing.T) {
	store := testutil.NewMemoryWriter()
	client := NewWithWriter(store, WithConcurrency(4))

	const batches = 10
	var wg sync.WaitGroup
	for i := 0; i < batches; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			blobs := testutil.GenerateBlobs(testutil.GenerateTestKey("concurrent"), 5)
			result, err := client.UploadBatch(context.Background(), "rust-docs-rs", blobs)
			assert.NoError(t, err)
			if result != nil {
				assert.Equal(t, 5, result.Uploaded)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, batches*5, store.Len())
}
