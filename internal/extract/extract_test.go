package extract

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchive(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"blur.tar", true},
		{"weather.tar", true},
		{"model.tar.gz", true},
		{"model.tgz", true},
		{"labels.zip", false},
		{"README.md", false},
		{"tarball", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsArchive(tc.name), tc.name)
	}
}

func writeTar(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range entries {
		if content == "" && name[len(name)-1] == '/' {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     name,
				Typeflag: tar.TypeDir,
				Mode:     0755,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func TestUntarNestedDirs(t *testing.T) {
	data := writeTar(t, map[string]string{
		"blur/":                       "",
		"blur/gaussian_blur/":         "",
		"blur/gaussian_blur/1/a.jpeg": "pixels",
		"blur/motion_blur/1/b.jpeg":   "more pixels",
	})
	dest := t.TempDir()
	require.NoError(t, Untar(bytes.NewReader(data), dest))

	content, err := os.ReadFile(filepath.Join(dest, "blur", "gaussian_blur", "1", "a.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(content))

	content, err = os.ReadFile(filepath.Join(dest, "blur", "motion_blur", "1", "b.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "more pixels", string(content))
}

func TestUntarRejectsTraversal(t *testing.T) {
	data := writeTar(t, map[string]string{
		"../evil.txt": "escape",
	})
	dest := t.TempDir()
	err := Untar(bytes.NewReader(data), dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "evil.txt"))
}

func TestUntarRejectsAbsolutePath(t *testing.T) {
	data := writeTar(t, map[string]string{
		"/etc/evil.txt": "escape",
	})
	err := Untar(bytes.NewReader(data), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute path")
}

func TestExtractPlainTar(t *testing.T) {
	dir := t.TempDir()
	data := writeTar(t, map[string]string{"noise/impulse/1.jpeg": "x"})
	archive := filepath.Join(dir, "noise.tar")
	require.NoError(t, os.WriteFile(archive, data, 0644))

	dest := filepath.Join(dir, "out")
	require.NoError(t, Extract(archive, dest))
	assert.FileExists(t, filepath.Join(dest, "noise", "impulse", "1.jpeg"))
}

func TestExtractGzippedTar(t *testing.T) {
	dir := t.TempDir()
	data := writeTar(t, map[string]string{"weights.bin": "binary"})

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	archive := filepath.Join(dir, "model.tar.gz")
	require.NoError(t, os.WriteFile(archive, buf.Bytes(), 0644))

	dest := filepath.Join(dir, "out")
	require.NoError(t, Extract(archive, dest))
	content, err := os.ReadFile(filepath.Join(dest, "weights.bin"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(content))
}

func TestExtractMissingArchive(t *testing.T) {
	err := Extract(filepath.Join(t.TempDir(), "nope.tar"), t.TempDir())
	require.Error(t, err)
}
