package s3

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/benchfetch/benchfetch/internal/extract"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

func (f *S3Fetcher) Fetch(job *utils.FetchJob) error {
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	fileType := job.Metadata["fileType"].(string)
	client, err := getS3Client(profileFrom(job.Metadata))
	if err != nil {
		return fmt.Errorf("error creating S3 client: %v", err)
	}
	if fileType == "folder" {
		log.Info().Str("op", "s3/download").Msgf("Starting folder download for s3://%s/%s", bucket, key)
		return f.fetchFolder(job, bucket, key, client)
	}
	log.Info().Str("op", "s3/download").Msgf("Starting file download for s3://%s/%s", bucket, key)
	return f.fetchFile(job, bucket, key, client)
}

func (f *S3Fetcher) fetchFile(job *utils.FetchJob, bucket, key string, client *S3Client) error {
	size := job.Metadata["size"].(int64)
	progressCh := make(chan int64, 100)
	defer close(progressCh)
	go func() {
		var totalDownloaded int64
		for bytes := range progressCh {
			totalDownloaded += bytes
			if job.ProgressFunc != nil {
				job.ProgressFunc(totalDownloaded, size)
			}
		}
	}()
	if err := performS3Download(bucket, key, job.OutputPath, client, progressCh); err != nil {
		return err
	}
	if doExtract, _ := job.Metadata["extract"].(bool); doExtract && extract.IsArchive(job.OutputPath) {
		return extract.Extract(job.OutputPath, filepath.Dir(job.OutputPath))
	}
	return nil
}

func (f *S3Fetcher) fetchFolder(job *utils.FetchJob, bucket, prefix string, client *S3Client) error {
	objects, err := listS3Objects(bucket, prefix, client)
	if err != nil {
		return fmt.Errorf("error listing objects: %v", err)
	}
	if len(objects) == 0 {
		return fmt.Errorf("no objects found in s3://%s/%s", bucket, prefix)
	}
	log.Debug().Str("op", "s3/download").Msgf("Found %d objects to download in folder", len(objects))
	var totalSize int64
	for _, obj := range objects {
		totalSize += obj.Size
	}

	var totalDownloaded int64
	var mu sync.Mutex
	var downloadErr error
	jobCh := make(chan s3Object, len(objects))
	for _, obj := range objects {
		jobCh <- obj
	}
	close(jobCh)
	numWorkers := min(job.Connections, len(objects))
	log.Debug().Str("op", "s3/download").Msgf("Using %d parallel workers for folder download", numWorkers)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for obj := range jobCh {
				relPath := strings.TrimPrefix(obj.Key, prefix)
				relPath = strings.TrimPrefix(relPath, "/")
				outputPath := filepath.Join(job.OutputPath, relPath)
				if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
					mu.Lock()
					if downloadErr == nil {
						downloadErr = fmt.Errorf("error creating directory: %v", err)
					}
					mu.Unlock()
					return
				}
				progressCh := make(chan int64, 100)
				go func(ch <-chan int64) {
					for bytes := range ch {
						downloaded := atomic.AddInt64(&totalDownloaded, bytes)
						if job.ProgressFunc != nil {
							job.ProgressFunc(downloaded, totalSize)
						}
					}
				}(progressCh)

				err := performS3Download(bucket, obj.Key, outputPath, client, progressCh)
				close(progressCh)
				if err != nil {
					mu.Lock()
					if downloadErr == nil {
						downloadErr = fmt.Errorf("error downloading %s: %v", obj.Key, err)
					}
					mu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()
	return downloadErr
}
