package httpfile

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(content)))
		if r.Method == http.MethodHead {
			return
		}
		w.Write([]byte(content))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetFileInfo(t *testing.T) {
	server := newFileServer(t, "hello world")
	client := utils.NewBenchHTTPClient(utils.HTTPClientConfig{})

	size, _, err := getFileInfo(server.URL+"/file.bin", client)
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)
}

func TestGetFileInfoContentDisposition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", "4")
		w.Header().Set("Content-Disposition", `attachment; filename="train.tar"`)
	}))
	defer server.Close()
	client := utils.NewBenchHTTPClient(utils.HTTPClientConfig{})

	size, name, err := getFileInfo(server.URL, client)
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)
	assert.Equal(t, "train.tar", name)
}

func TestGetFileInfoNoRangeSupport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4")
	}))
	defer server.Close()
	client := utils.NewBenchHTTPClient(utils.HTTPClientConfig{})

	_, _, err := getFileInfo(server.URL, client)
	assert.Equal(t, utils.ErrRangeRequestsNotSupported, err)
}

func drain(ch <-chan int64) {
	for range ch {
	}
}

func TestPerformSimpleDownload(t *testing.T) {
	content := strings.Repeat("benchdata", 1024)
	server := newFileServer(t, content)

	outputPath := filepath.Join(t.TempDir(), "out.bin")
	client := utils.NewBenchHTTPClient(utils.HTTPClientConfig{})
	progressCh := make(chan int64, 100)
	go drain(progressCh)

	require.NoError(t, PerformSimpleDownload(server.URL+"/out.bin", outputPath, client, progressCh))
	got, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestValidateJobRejectsBadScheme(t *testing.T) {
	fetcher := &HTTPFetcher{}
	job := &utils.FetchJob{URL: "ftp://example.com/file", Metadata: map[string]any{}}
	err := fetcher.ValidateJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestValidateJobNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	fetcher := &HTTPFetcher{}
	job := &utils.FetchJob{URL: server.URL + "/missing", Metadata: map[string]any{}}
	err := fetcher.ValidateJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestBuildJobSkipsExistingSameSizeFile(t *testing.T) {
	content := "already here"
	server := newFileServer(t, content)

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "file.bin")
	require.NoError(t, os.WriteFile(outputPath, []byte(content), 0644))

	fetcher := &HTTPFetcher{}
	job := &utils.FetchJob{
		URL:        server.URL + "/file.bin",
		OutputPath: outputPath,
		Metadata:   map[string]any{},
	}
	err := fetcher.BuildJob(job)
	assert.True(t, errors.Is(err, utils.ErrAlreadyExists))
}

func TestBuildJobInfersFilenameFromURL(t *testing.T) {
	server := newFileServer(t, "abc")
	fetcher := &HTTPFetcher{}
	job := &utils.FetchJob{URL: server.URL + "/datasets/val.tar", Metadata: map[string]any{}}
	require.NoError(t, fetcher.BuildJob(job))
	assert.Equal(t, "val.tar", job.OutputPath)
	assert.Equal(t, "val.tar", job.Name)
}

func TestFetchExtractsNextToOutput(t *testing.T) {
	// Extraction requested without an explicit destination lands next to
	// the downloaded archive.
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "inner.txt", Typeflag: tar.TypeReg, Mode: 0644, Size: 5,
	}))
	_, err := tw.Write([]byte("inner"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	server := newFileServer(t, buf.String())

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "data.tar")
	fetcher := &HTTPFetcher{}
	job := &utils.FetchJob{
		URL:        server.URL + "/data.tar",
		OutputPath: outputPath,
		Metadata: map[string]any{
			"fileSize":       int64(buf.Len()),
			"rangeSupported": true,
			"extract":        true,
		},
		Connections: 1,
	}
	require.NoError(t, fetcher.Fetch(job))
	assert.FileExists(t, filepath.Join(dir, "inner.txt"))
}

func TestExtractChunkID(t *testing.T) {
	id, err := extractChunkID("val.tar.part3")
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	_, err = extractChunkID("val.tar")
	assert.Error(t, err)
}
