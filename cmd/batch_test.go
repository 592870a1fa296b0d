package cmd

import (
	"testing"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBatch = `
zenodo:
  - record: "2235448"
    file: blur.tar
    op: data/ImageNet-C
dataset:
  - link: cifar10-c
http:
  - link: https://example.com/labels.tar.gz
    op: data/labels.tar.gz
git:
  - link: https://github.com/user/repo
`

func TestBuildJobsFromBatch(t *testing.T) {
	var batch map[string][]utils.BatchEntry
	require.NoError(t, yaml.Unmarshal([]byte(sampleBatch), &batch))

	jobs, err := buildJobsFromBatch(batch)
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	byType := map[string]int{}
	for _, job := range jobs {
		byType[job.JobType]++
	}
	// The dataset entry expands into a zenodo job per archive.
	assert.Equal(t, 2, byType["zenodo"])
	assert.Equal(t, 1, byType["http"])
	assert.Equal(t, 1, byType["git-clone"])
}

func TestBuildJobsFromBatchZenodoEntry(t *testing.T) {
	batch := map[string][]utils.BatchEntry{
		"zenodo": {{Record: "2235448", File: "noise.tar", OutputPath: "data/ImageNet-C"}},
	}
	jobs, err := buildJobsFromBatch(batch)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "zenodo", jobs[0].JobType)
	assert.Equal(t, "2235448", jobs[0].URL)
	assert.Equal(t, "data/ImageNet-C", jobs[0].OutputPath)
	assert.Equal(t, "noise.tar", jobs[0].Metadata["file"])
	assert.Equal(t, true, jobs[0].Metadata["extract"])
}

func TestBuildJobsFromBatchUnknownSection(t *testing.T) {
	_, err := buildJobsFromBatch(map[string][]utils.BatchEntry{
		"carrier-pigeon": {{Link: "x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestBuildJobsFromBatchUnknownDataset(t *testing.T) {
	_, err := buildJobsFromBatch(map[string][]utils.BatchEntry{
		"dataset": {{Link: "mnist-c"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mnist-c")
}

func TestBuildJobsFromBatchMissingLink(t *testing.T) {
	_, err := buildJobsFromBatch(map[string][]utils.BatchEntry{
		"http": {{OutputPath: "out.bin"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing link")
}

func TestBuildJobsFromBatchS3DefaultsProfile(t *testing.T) {
	jobs, err := buildJobsFromBatch(map[string][]utils.BatchEntry{
		"s3": {{Link: "s3://my-datasets/imagenet/val.tar"}},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "s3", jobs[0].JobType)
	assert.Equal(t, "default", jobs[0].Metadata["profile"])
}

func TestBuildJobsFromBatchS3ExplicitProfile(t *testing.T) {
	jobs, err := buildJobsFromBatch(map[string][]utils.BatchEntry{
		"s3": {{Link: "s3://my-datasets/val.tar", Profile: "research"}},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "research", jobs[0].Metadata["profile"])
}

func TestBuildJobsFromBatchGDriveAuth(t *testing.T) {
	jobs, err := buildJobsFromBatch(map[string][]utils.BatchEntry{
		"google-drive": {{Link: "https://drive.google.com/file/d/1A2b3C/view", APIKey: "AIzaKey"}},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "AIzaKey", jobs[0].Metadata["apiKey"])

	jobs, err = buildJobsFromBatch(map[string][]utils.BatchEntry{
		"gdrive": {{Link: "https://drive.google.com/file/d/1A2b3C/view", Credentials: "creds.json"}},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "creds.json", jobs[0].Metadata["credentialsFile"])
}

func TestBuildJobsFromBatchGDriveMissingAuth(t *testing.T) {
	_, err := buildJobsFromBatch(map[string][]utils.BatchEntry{
		"google-drive": {{Link: "https://drive.google.com/file/d/1A2b3C/view"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api-key or credentials required")
}

func TestBuildJobsFromBatchGitUsesStream(t *testing.T) {
	jobs, err := buildJobsFromBatch(map[string][]utils.BatchEntry{
		"gitclone": {{Link: "https://github.com/user/repo"}},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "stream", jobs[0].ProgressType)
}
