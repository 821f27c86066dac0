package aws

import (
	"context"
	"errors"
	"os"
	"testing"

	"resume-builder/core"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real bucket, e.g. a local MinIO:
// TEST_S3_BUCKET=resumes TEST_S3_ENDPOINT=http://localhost:9000 TEST_S3_ACCESS_KEY=... TEST_S3_SECRET_KEY=...
func TestBlobStore_Integration_PutGet(t *testing.T) {
	bucket := os.Getenv("TEST_S3_BUCKET")
	if bucket == "" {
		t.Skip("TEST_S3_BUCKET not set, skipping integration test")
	}
	ctx := context.Background()
	store, err := NewBlobStore(ctx, Options{
		Bucket:    bucket,
		Region:    os.Getenv("TEST_S3_REGION"),
		Endpoint:  os.Getenv("TEST_S3_ENDPOINT"),
		AccessKey: os.Getenv("TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("TEST_S3_SECRET_KEY"),
	})
	require.NoError(t, err)

	key := "resumeData:" + uuid.NewString()
	_, err = store.Get(ctx, key)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, store.Put(ctx, key, &core.Blob{Data: []byte(`{"template":"tech"}`)}))
	blob, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"template":"tech"}`, string(blob.Data))
}
