package zenodo

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/benchfetch/benchfetch/internal/extract"
	"github.com/benchfetch/benchfetch/internal/fetchers/httpfile"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

// Fetch downloads every selected record file into the destination
// directory and unpacks the tarballs in place. Files already present
// with the expected size are skipped; a job where everything was
// skipped completes as ErrAlreadyExists.
func (f *ZenodoFetcher) Fetch(job *utils.FetchJob) error {
	files := job.Metadata["files"].([]RecordFile)
	totalSize := job.Metadata["totalSize"].(int64)
	destDir := job.OutputPath
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("error creating destination directory: %v", err)
	}
	client := utils.NewBenchHTTPClient(job.HTTPClientConfig)
	doExtract, _ := job.Metadata["extract"].(bool)

	var totalDownloaded atomic.Int64
	downloaded := 0
	for _, rf := range files {
		target := filepath.Join(destDir, rf.Name)
		if info, err := os.Stat(target); err == nil && rf.Size > 0 && info.Size() == rf.Size {
			log.Info().Str("op", "zenodo/download").Msgf("%s already present, skipping", rf.Name)
			totalDownloaded.Add(rf.Size)
			if job.StreamFunc != nil {
				job.StreamFunc(fmt.Sprintf("%s already present, skipping", rf.Name))
			}
			continue
		}

		progressCh := make(chan int64, 100)
		progressDone := make(chan struct{})
		go func() {
			defer close(progressDone)
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case bytes, ok := <-progressCh:
					if !ok {
						if job.ProgressFunc != nil {
							job.ProgressFunc(totalDownloaded.Load(), totalSize)
						}
						return
					}
					totalDownloaded.Add(bytes)
				case <-ticker.C:
					if job.ProgressFunc != nil {
						job.ProgressFunc(totalDownloaded.Load(), totalSize)
					}
				}
			}
		}()
		err := httpfile.PerformSimpleDownload(rf.DownloadURL, target, client, progressCh)
		<-progressDone
		if err != nil {
			return fmt.Errorf("error downloading %s: %w", rf.Name, err)
		}
		downloaded++

		if doExtract && extract.IsArchive(rf.Name) {
			if job.StreamFunc != nil {
				job.StreamFunc(fmt.Sprintf("Extracting %s", rf.Name))
			}
			if err := extract.Extract(target, destDir); err != nil {
				return fmt.Errorf("error extracting %s: %w", rf.Name, err)
			}
			log.Info().Str("op", "zenodo/download").Msgf("extracted %s into %s", rf.Name, destDir)
		}
	}
	if downloaded == 0 {
		return utils.ErrAlreadyExists
	}
	return nil
}
