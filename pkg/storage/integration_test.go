//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"

	"github.com/mppkit/mppconvert/pkg/config"
)

// TestRouter_LocalStack round-trips an artifact through a real S3 API.
// Requires Docker.
func TestRouter_LocalStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := localstack.Run(ctx, "localstack/localstack:3.0",
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "4566/tcp", "http")
	require.NoError(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	r := NewRouter(config.StorageConfig{
		Region:       "us-east-1",
		Endpoint:     endpoint,
		UsePathStyle: true,
	})

	// Create the bucket through the same client the router built.
	store, _, err := r.resolve(ctx, "s3://plans/seed")
	require.NoError(t, err)
	_, err = store.(*S3Store).Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String("plans")})
	require.NoError(t, err)

	require.NoError(t, r.Write(ctx, "s3://plans/out/corrected.csv", []byte("ID,Name\n1,Survey\n")))

	data, err := r.ReadAll(ctx, "s3://plans/out/corrected.csv")
	require.NoError(t, err)
	assert.Equal(t, "ID,Name\n1,Survey\n", string(data))

	_, err = r.Open(ctx, "s3://plans/out/missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}
