package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{
		"Authorization: Bearer abc123",
		"X-Custom:value",
		"malformed-header",
	})
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer abc123",
		"X-Custom":      "value",
	}, headers)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatBytes(tc.in))
	}
}

func TestRenewOutputPath(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "blur.tar")
	require.NoError(t, os.WriteFile(original, []byte("x"), 0644))

	renewed := RenewOutputPath(original)
	assert.Equal(t, filepath.Join(dir, "blur-(1).tar"), renewed)

	require.NoError(t, os.WriteFile(renewed, []byte("x"), 0644))
	assert.Equal(t, filepath.Join(dir, "blur-(2).tar"), RenewOutputPath(original))
}

func TestGetRandomUserAgent(t *testing.T) {
	assert.NotEmpty(t, GetRandomUserAgent())
}

func TestCleanFunction(t *testing.T) {
	dir := t.TempDir()
	tempDir := filepath.Join(dir, TempDirName)
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "out.bin.part0"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "out.bin.part1"), []byte("x"), 0644))

	require.NoError(t, CleanFunction(filepath.Join(dir, "out.bin")))
	assert.NoDirExists(t, tempDir)
}
