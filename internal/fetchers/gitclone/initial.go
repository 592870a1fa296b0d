package gitclone

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

type GitCloneFetcher struct{}

func (f *GitCloneFetcher) ValidateJob(job *utils.FetchJob) error {
	provider, owner, repo, err := parseGitURL(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["provider"] = provider
	job.Metadata["owner"] = owner
	job.Metadata["repo"] = repo
	if job.Name == "" {
		job.Name = fmt.Sprintf("%s/%s", owner, repo)
	}
	log.Info().Str("op", "gitclone/initial").Msgf("job validated for %s/%s/%s", provider, owner, repo)
	return nil
}

func (f *GitCloneFetcher) BuildJob(job *utils.FetchJob) error {
	provider := job.Metadata["provider"].(string)
	owner := job.Metadata["owner"].(string)
	repo := job.Metadata["repo"].(string)
	job.Metadata["cloneURL"] = fmt.Sprintf("https://%s/%s/%s", provider, owner, repo)
	if job.OutputPath == "" {
		job.OutputPath = repo
	}
	if info, err := os.Stat(job.OutputPath); err == nil && info.IsDir() {
		job.OutputPath = utils.RenewOutputPath(job.OutputPath)
	}
	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %v", err)
	}
	log.Info().Str("op", "gitclone/initial").Msgf("job built for %s/%s/%s", provider, owner, repo)
	return nil
}

func parseGitURL(url string) (string, string, string, error) {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, ".git")
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	parts := strings.Split(url, "/")
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("invalid git URL format, expected provider/owner/repo")
	}
	provider := parts[0]
	owner := parts[1]
	repo := parts[2]
	switch provider {
	case "github.com", "gitlab.com", "bitbucket.org", "huggingface.co":
	default:
		return "", "", "", fmt.Errorf("unsupported git provider: %s", provider)
	}
	return provider, owner, repo, nil
}
