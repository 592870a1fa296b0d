package gitclone

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/go-git/go-git/v5"
)

type cloneProgressWriter struct {
	streamFunc func(string)
}

func (p *cloneProgressWriter) Write(data []byte) (int, error) {
	message := strings.TrimSpace(string(data))
	if message != "" && p.streamFunc != nil {
		p.streamFunc(message)
	}
	return len(data), nil
}

func (f *GitCloneFetcher) Fetch(job *utils.FetchJob) error {
	cloneURL := job.Metadata["cloneURL"].(string)
	depth, _ := job.Metadata["depth"].(int)
	auth, err := getAuthMethod(cloneURL, job.Metadata)
	if err != nil && job.StreamFunc != nil {
		job.StreamFunc(fmt.Sprintf("Warning: %v", err))
	}
	cloneOptions := &git.CloneOptions{
		URL:      cloneURL,
		Progress: &cloneProgressWriter{streamFunc: job.StreamFunc},
		Auth:     auth,
	}
	if depth > 0 {
		cloneOptions.Depth = depth
	}
	if job.StreamFunc != nil {
		job.StreamFunc(fmt.Sprintf("Cloning %s", cloneURL))
	}
	_, err = git.PlainClone(job.OutputPath, false, cloneOptions)
	if err != nil {
		return fmt.Errorf("git clone failed: %v", err)
	}
	size, err := getDirSize(job.OutputPath)
	if err == nil && job.StreamFunc != nil {
		job.StreamFunc(fmt.Sprintf("Clone complete - Total size: %s", utils.FormatBytes(uint64(size))))
	}
	return nil
}

func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
