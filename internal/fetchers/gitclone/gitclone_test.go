package gitclone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitURL(t *testing.T) {
	tests := []struct {
		url          string
		wantProvider string
		wantOwner    string
		wantRepo     string
		wantErr      bool
	}{
		{"https://github.com/user/repo", "github.com", "user", "repo", false},
		{"https://github.com/user/repo.git", "github.com", "user", "repo", false},
		{"github.com/user/repo/", "github.com", "user", "repo", false},
		{"https://gitlab.com/group/project", "gitlab.com", "group", "project", false},
		{"https://bitbucket.org/team/repo", "bitbucket.org", "team", "repo", false},
		{"https://huggingface.co/datasets/glue", "huggingface.co", "datasets", "glue", false},
		{"https://example.com/user/repo", "", "", "", true},
		{"github.com/user", "", "", "", true},
	}
	for _, tc := range tests {
		provider, owner, repo, err := parseGitURL(tc.url)
		if tc.wantErr {
			assert.Error(t, err, tc.url)
			continue
		}
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.wantProvider, provider, tc.url)
		assert.Equal(t, tc.wantOwner, owner, tc.url)
		assert.Equal(t, tc.wantRepo, repo, tc.url)
	}
}

func TestGetAuthMethodToken(t *testing.T) {
	auth, err := getAuthMethod("https://github.com/user/repo", map[string]any{"token": "tok"})
	require.NoError(t, err)
	assert.NotNil(t, auth)

	auth, err = getAuthMethod("https://bitbucket.org/user/repo", map[string]any{"token": "tok"})
	require.NoError(t, err)
	assert.NotNil(t, auth)
}

func TestGetAuthMethodNone(t *testing.T) {
	_, err := getAuthMethod("https://github.com/user/repo", map[string]any{})
	assert.Error(t, err)
}
