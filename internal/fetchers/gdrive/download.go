package gdrive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benchfetch/benchfetch/internal/fetchers/httpfile"
	"github.com/benchfetch/benchfetch/internal/utils"
)

func (f *GDriveFetcher) Fetch(job *utils.FetchJob) error {
	token := job.Metadata["token"].(string)
	isFolder := job.Metadata["isFolder"].(bool)
	totalSize := job.Metadata["totalSize"].(int64)
	client := utils.NewBenchHTTPClient(job.HTTPClientConfig)
	if isFolder {
		return f.fetchFolder(job, token, client, totalSize)
	}
	return f.fetchFile(job, token, client, totalSize)
}

func (f *GDriveFetcher) fetchFile(job *utils.FetchJob, token string, client *utils.BenchHTTPClient, totalSize int64) error {
	fileID := job.Metadata["fileID"].(string)
	progressCh := make(chan int64)
	go func() {
		var downloaded int64
		for bytes := range progressCh {
			downloaded += bytes
			if job.ProgressFunc != nil {
				job.ProgressFunc(downloaded, totalSize)
			}
		}
	}()
	return performGDriveDownload(job.OutputPath, token, fileID, client, progressCh)
}

func (f *GDriveFetcher) fetchFolder(job *utils.FetchJob, token string, client *utils.BenchHTTPClient, totalSize int64) error {
	files := job.Metadata["folderFiles"].([]map[string]any)
	if err := os.MkdirAll(job.OutputPath, 0755); err != nil {
		return fmt.Errorf("error creating folder: %v", err)
	}

	var totalDownloaded int64
	for _, file := range files {
		fileID := file["id"].(string)
		fileName := file["name"].(string)
		mimeType := file["mimeType"].(string)
		// Google Docs files have no binary representation
		if strings.HasPrefix(mimeType, "application/vnd.google-apps.") {
			continue
		}
		outputPath := filepath.Join(job.OutputPath, fileName)
		progressCh := make(chan int64)
		go func(ch <-chan int64) {
			for bytes := range ch {
				totalDownloaded += bytes
				if job.ProgressFunc != nil {
					job.ProgressFunc(totalDownloaded, totalSize)
				}
			}
		}(progressCh)
		if err := performGDriveDownload(outputPath, token, fileID, client, progressCh); err != nil {
			return fmt.Errorf("error downloading %s: %v", fileName, err)
		}
	}
	return nil
}

func performGDriveDownload(outputPath, token, fileID string, client *utils.BenchHTTPClient, progressCh chan<- int64) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %v", err)
	}
	var downloadURL string
	if isOAuthToken(token) {
		downloadURL = fmt.Sprintf("%s/%s?alt=media", driveAPIURL, fileID)
		client.SetHeader("Authorization", "Bearer "+token)
	} else {
		downloadURL = fmt.Sprintf("%s/%s?alt=media&key=%s", driveAPIURL, fileID, token)
	}
	if err := httpfile.PerformSimpleDownload(downloadURL, outputPath, client, progressCh); err != nil {
		return fmt.Errorf("error downloading Google Drive file: %v", err)
	}
	return nil
}
