package s3

import (
	"testing"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFrom(t *testing.T) {
	assert.Equal(t, "default", profileFrom(map[string]any{}))
	assert.Equal(t, "default", profileFrom(map[string]any{"profile": ""}))
	assert.Equal(t, "research", profileFrom(map[string]any{"profile": "research"}))
}

// A job without a profile key, like a minimal batch entry, must resolve
// to the default profile instead of crashing on metadata access.
func TestValidateJobWithoutProfile(t *testing.T) {
	fetcher := &S3Fetcher{}
	job := &utils.FetchJob{
		URL:      "s3://my-datasets/imagenet/val.tar",
		Metadata: map[string]any{},
	}
	require.NoError(t, fetcher.ValidateJob(job))
	assert.Equal(t, "my-datasets", job.Metadata["bucket"])
	assert.Equal(t, "imagenet/val.tar", job.Metadata["key"])
	assert.NotPanics(t, func() {
		assert.Equal(t, "default", profileFrom(job.Metadata))
	})
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		url        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"s3://my-bucket/datasets/val.tar", "my-bucket", "datasets/val.tar", false},
		{"s3://my-bucket/prefix/", "my-bucket", "prefix/", false},
		{"s3://my-bucket", "my-bucket", "", false},
		{"my-bucket/key", "my-bucket", "key", false},
		{"s3://", "", "", true},
	}
	for _, tc := range tests {
		bucket, key, err := parseS3URL(tc.url)
		if tc.wantErr {
			assert.Error(t, err, tc.url)
			continue
		}
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.wantBucket, bucket, tc.url)
		assert.Equal(t, tc.wantKey, key, tc.url)
	}
}
