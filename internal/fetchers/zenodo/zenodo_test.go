package zenodo

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordRef(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"2235448", "2235448", false},
		{"https://zenodo.org/record/2235448", "2235448", false},
		{"https://zenodo.org/records/2535967", "2535967", false},
		{"https://zenodo.org/records/2535967/files/CIFAR-10-C.tar", "2535967", false},
		{"10.5281/zenodo.3555552", "3555552", false},
		{"doi:10.5281/zenodo.3555552", "3555552", false},
		{"https://doi.org/10.5281/zenodo.2235448", "2235448", false},
		{"not-a-record", "", true},
		{"zenodo.org", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := parseRecordRef(tc.ref)
		if tc.wantErr {
			assert.Error(t, err, tc.ref)
		} else {
			require.NoError(t, err, tc.ref)
			assert.Equal(t, tc.want, got, tc.ref)
		}
	}
}

func TestParseRecordFilesModernShape(t *testing.T) {
	record := map[string]any{
		"files": []any{
			map[string]any{
				"key":      "blur.tar",
				"size":     float64(12345),
				"checksum": "md5:abc",
				"links":    map[string]any{"self": "https://example.com/blur.tar"},
			},
		},
	}
	files, err := parseRecordFiles(record, "2235448")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "blur.tar", files[0].Name)
	assert.Equal(t, int64(12345), files[0].Size)
	assert.Equal(t, "https://example.com/blur.tar", files[0].DownloadURL)
}

func TestParseRecordFilesLegacyShape(t *testing.T) {
	record := map[string]any{
		"files": []any{
			map[string]any{
				"filename": "noise.tar",
				"filesize": float64(99),
				"links":    map[string]any{"download": "https://example.com/noise.tar"},
			},
		},
	}
	files, err := parseRecordFiles(record, "2235448")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "noise.tar", files[0].Name)
	assert.Equal(t, int64(99), files[0].Size)
	assert.Equal(t, "https://example.com/noise.tar", files[0].DownloadURL)
}

func TestParseRecordFilesFallbackURL(t *testing.T) {
	record := map[string]any{
		"files": []any{
			map[string]any{"key": "weather.tar", "size": float64(1)},
		},
	}
	files, err := parseRecordFiles(record, "2235448")
	require.NoError(t, err)
	assert.Equal(t, "https://zenodo.org/records/2235448/files/weather.tar?download=1", files[0].DownloadURL)
}

func TestParseRecordFilesEmpty(t *testing.T) {
	_, err := parseRecordFiles(map[string]any{}, "42")
	assert.Error(t, err)
}

func TestSelectFile(t *testing.T) {
	files := []RecordFile{{Name: "blur.tar"}, {Name: "noise.tar"}}
	got, err := selectFile(files, "noise.tar")
	require.NoError(t, err)
	assert.Equal(t, "noise.tar", got.Name)

	_, err = selectFile(files, "fog.tar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blur.tar")
}

func makeTarball(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     name,
		Typeflag: tar.TypeReg,
		Mode:     0644,
		Size:     int64(len(content)),
	}))
	_, err := tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

// newRecordServer serves a one-file record pointing back at itself for
// the archive bytes.
func newRecordServer(t *testing.T, fileName string, fileBytes []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	mux.HandleFunc("/api/records/2235448", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"files": [{"key": %q, "size": %d, "checksum": "md5:ignored", "links": {"self": %q}}]}`,
			fileName, len(fileBytes), server.URL+"/files/"+fileName)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(fileBytes)
	})
	return server
}

func TestFetchDownloadsAndExtracts(t *testing.T) {
	tarball := makeTarball(t, "blur/gaussian_blur/1.jpeg", "pixels")
	server := newRecordServer(t, "blur.tar", tarball)

	oldBase := apiBase
	apiBase = server.URL + "/api/records"
	defer func() { apiBase = oldBase }()

	dest := filepath.Join(t.TempDir(), "data", "ImageNet-C")
	job := &utils.FetchJob{
		JobType:    "zenodo",
		URL:        "2235448",
		OutputPath: dest,
		Metadata: map[string]any{
			"file":    "blur.tar",
			"extract": true,
		},
	}
	fetcher := &ZenodoFetcher{}
	require.NoError(t, fetcher.ValidateJob(job))
	assert.Equal(t, "blur.tar", job.Name)
	require.NoError(t, fetcher.BuildJob(job))
	require.NoError(t, fetcher.Fetch(job))

	assert.FileExists(t, filepath.Join(dest, "blur.tar"))
	assert.FileExists(t, filepath.Join(dest, "blur", "gaussian_blur", "1.jpeg"))
}

func TestFetchSecondRunSkips(t *testing.T) {
	tarball := makeTarball(t, "noise/impulse/1.jpeg", "x")
	server := newRecordServer(t, "noise.tar", tarball)

	oldBase := apiBase
	apiBase = server.URL + "/api/records"
	defer func() { apiBase = oldBase }()

	dest := t.TempDir()
	run := func() error {
		job := &utils.FetchJob{
			JobType:    "zenodo",
			URL:        "2235448",
			OutputPath: dest,
			Metadata:   map[string]any{"file": "noise.tar", "extract": true},
		}
		fetcher := &ZenodoFetcher{}
		if err := fetcher.ValidateJob(job); err != nil {
			return err
		}
		if err := fetcher.BuildJob(job); err != nil {
			return err
		}
		return fetcher.Fetch(job)
	}

	require.NoError(t, run())
	// The archive is already present with the right size, so the second
	// run downloads nothing.
	err := run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrAlreadyExists))
}

func TestBuildJobUnknownFile(t *testing.T) {
	server := newRecordServer(t, "blur.tar", []byte("tar"))
	oldBase := apiBase
	apiBase = server.URL + "/api/records"
	defer func() { apiBase = oldBase }()

	job := &utils.FetchJob{
		URL:      "2235448",
		Metadata: map[string]any{"file": "fog.tar"},
	}
	fetcher := &ZenodoFetcher{}
	require.NoError(t, fetcher.ValidateJob(job))
	err := fetcher.BuildJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fog.tar")
}

func TestBuildJobRecordNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	oldBase := apiBase
	apiBase = server.URL + "/api/records"
	defer func() { apiBase = oldBase }()

	job := &utils.FetchJob{URL: "999999", Metadata: map[string]any{}}
	fetcher := &ZenodoFetcher{}
	require.NoError(t, fetcher.ValidateJob(job))
	err := fetcher.BuildJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBuildJobDefaultOutputPath(t *testing.T) {
	server := newRecordServer(t, "blur.tar", []byte("tar"))
	oldBase := apiBase
	apiBase = server.URL + "/api/records"
	defer func() { apiBase = oldBase }()

	job := &utils.FetchJob{URL: "2235448", Metadata: map[string]any{}}
	fetcher := &ZenodoFetcher{}
	require.NoError(t, fetcher.ValidateJob(job))
	require.NoError(t, fetcher.BuildJob(job))
	assert.Equal(t, "zenodo-2235448", job.OutputPath)
}
