package httpfile

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

// PerformMultiDownload splits the file into byte ranges and downloads
// them over parallel connections, assembling the parts at the end.
func PerformMultiDownload(config utils.DownloadConfig, client *utils.BenchHTTPClient, fileSize int64, progressCh chan<- int64) error {
	job := utils.DownloadJob{
		Config:    config,
		FileSize:  fileSize,
		StartTime: time.Now(),
	}
	tempDir := filepath.Join(filepath.Dir(config.OutputPath), utils.TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return fmt.Errorf("error creating temp directory: %v", err)
	}

	chunkSize := fileSize / int64(config.Connections)
	for i := range config.Connections {
		startByte := int64(i) * chunkSize
		endByte := startByte + chunkSize - 1
		if i == config.Connections-1 {
			endByte = fileSize - 1
		}
		job.Chunks = append(job.Chunks, utils.DownloadChunk{
			ID:        i,
			StartByte: startByte,
			EndByte:   endByte,
		})
	}

	var wg sync.WaitGroup
	mutex := &sync.Mutex{}
	for i := range job.Chunks {
		wg.Add(1)
		go chunkedDownload(&job, &job.Chunks[i], client, &wg, progressCh, mutex)
	}
	wg.Wait()

	for _, chunk := range job.Chunks {
		if !chunk.Completed {
			return fmt.Errorf("chunk %d failed to complete", chunk.ID)
		}
	}
	return assembleFile(job)
}

func chunkedDownload(job *utils.DownloadJob, chunk *utils.DownloadChunk, client *utils.BenchHTTPClient, wg *sync.WaitGroup, progressCh chan<- int64, mutex *sync.Mutex) {
	defer wg.Done()
	tempDir := filepath.Join(filepath.Dir(job.Config.OutputPath), utils.TempDirName)
	tempFileName := filepath.Join(tempDir, fmt.Sprintf("%s.part%d", filepath.Base(job.Config.OutputPath), chunk.ID))
	expectedSize := chunk.EndByte - chunk.StartByte + 1
	resumeOffset := int64(0)
	if fileInfo, err := os.Stat(tempFileName); err == nil {
		resumeOffset = fileInfo.Size()
		if resumeOffset == expectedSize {
			mutex.Lock()
			job.TempFiles = append(job.TempFiles, tempFileName)
			mutex.Unlock()
			chunk.Downloaded = resumeOffset
			chunk.Completed = true
			progressCh <- resumeOffset
			return
		} else if resumeOffset > expectedSize {
			os.Remove(tempFileName)
			resumeOffset = 0
		}
	}
	maxRetries := 5
	for retry := range maxRetries {
		if retry > 0 {
			time.Sleep(time.Duration(retry+1) * 500 * time.Millisecond) // Backoff
			if fileInfo, err := os.Stat(tempFileName); err == nil {
				currentSize := fileInfo.Size()
				if currentSize != chunk.Downloaded && chunk.Downloaded > 0 {
					os.Remove(tempFileName)
					progressCh <- -chunk.Downloaded // Subtract from progress
					chunk.Downloaded = 0
					resumeOffset = 0
				}
			}
		}
		if err := downloadSingleChunk(job, chunk, client, tempFileName, progressCh, resumeOffset); err != nil {
			chunk.LastError = err
			log.Debug().Str("op", "httpfile/multi").Err(err).Msgf("Chunk %d attempt %d failed", chunk.ID, retry+1)
			continue
		}
		mutex.Lock()
		job.TempFiles = append(job.TempFiles, tempFileName)
		mutex.Unlock()
		chunk.Completed = true
		return
	}
}

func downloadSingleChunk(job *utils.DownloadJob, chunk *utils.DownloadChunk, client *utils.BenchHTTPClient, tempFileName string, progressCh chan<- int64, resumeOffset int64) error {
	flag := os.O_WRONLY | os.O_CREATE
	if resumeOffset > 0 {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	tempFile, err := os.OpenFile(tempFileName, flag, 0644)
	if err != nil {
		return fmt.Errorf("error opening temp file: %v", err)
	}
	defer tempFile.Close()

	startByte := chunk.StartByte + resumeOffset
	req, err := http.NewRequest("GET", job.Config.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", startByte, chunk.EndByte))
	req.Header.Set("Connection", "keep-alive")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Range") == "" {
		return errors.New("missing Content-Range header")
	}

	if resumeOffset > 0 {
		progressCh <- resumeOffset
		chunk.Downloaded = resumeOffset
	}
	buffer := make([]byte, utils.DefaultBufferSize)
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			_, writeErr := tempFile.Write(buffer[:bytesRead])
			if writeErr != nil {
				return writeErr
			}
			chunk.Downloaded += int64(bytesRead)
			progressCh <- int64(bytesRead)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return readErr
		}
	}
	return tempFile.Sync()
}

func assembleFile(job utils.DownloadJob) error {
	sort.Slice(job.TempFiles, func(i, j int) bool {
		idI, _ := extractChunkID(job.TempFiles[i])
		idJ, _ := extractChunkID(job.TempFiles[j])
		return idI < idJ
	})
	destFile, err := os.Create(job.Config.OutputPath)
	if err != nil {
		return err
	}
	defer destFile.Close()

	for _, tempFilePath := range job.TempFiles {
		tempFile, err := os.Open(tempFilePath)
		if err != nil {
			return fmt.Errorf("error opening chunk: %v", err)
		}
		_, err = io.Copy(destFile, tempFile)
		tempFile.Close()
		if err != nil {
			return fmt.Errorf("error copying chunk: %v", err)
		}
		os.Remove(tempFilePath)
	}
	return destFile.Sync()
}

func extractChunkID(fileName string) (int, error) {
	matches := utils.ChunkIDRegex.FindStringSubmatch(fileName)
	if len(matches) != 2 {
		return -1, fmt.Errorf("no chunk ID in %s", fileName)
	}
	return strconv.Atoi(matches[1])
}
