package gdrive

import (
	"fmt"
	"os"
	"strconv"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

type GDriveFetcher struct{}

func (f *GDriveFetcher) ValidateJob(job *utils.FetchJob) error {
	fileID, err := extractFileID(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["fileID"] = fileID
	if job.Name == "" {
		job.Name = job.URL
	}

	_, hasAPIKey := job.Metadata["apiKey"].(string)
	credentialsFile, hasCredsFile := job.Metadata["credentialsFile"].(string)
	if !hasAPIKey && !hasCredsFile {
		return fmt.Errorf("either --api-key or --credentials must be provided")
	}
	if hasAPIKey && hasCredsFile {
		return fmt.Errorf("only one of --api-key or --credentials can be provided")
	}
	if hasCredsFile {
		if _, err := os.Stat(credentialsFile); err != nil {
			return fmt.Errorf("credentials file not found: %v", err)
		}
	}
	log.Info().Str("op", "gdrive/initial").Msgf("job validated for %s", job.URL)
	return nil
}

func (f *GDriveFetcher) BuildJob(job *utils.FetchJob) error {
	fileID := job.Metadata["fileID"].(string)
	var token string
	var err error
	if apiKey, ok := job.Metadata["apiKey"].(string); ok {
		token = apiKey
	} else if credFile, ok := job.Metadata["credentialsFile"].(string); ok {
		job.PauseFunc()
		token, err = getAccessTokenFromCredentials(credFile)
		job.ResumeFunc()
		if err != nil {
			return fmt.Errorf("error getting OAuth token: %v", err)
		}
	}
	job.Metadata["token"] = token

	client := utils.NewBenchHTTPClient(job.HTTPClientConfig)
	metadata, err := getFileMetadata(fileID, client, token)
	if err != nil {
		return fmt.Errorf("error getting metadata: %v", err)
	}

	mimeType, _ := metadata["mimeType"].(string)
	if mimeType == "application/vnd.google-apps.folder" {
		job.Metadata["isFolder"] = true
		files, err := listFolderContents(fileID, token, client)
		if err != nil {
			return fmt.Errorf("error listing folder: %v", err)
		}
		if job.OutputPath == "" {
			name, _ := metadata["name"].(string)
			if name == "" {
				name = fileID
			}
			job.OutputPath = name
		}
		var totalSize int64
		for _, file := range files {
			if sizeStr, ok := file["size"].(string); ok {
				if size, err := strconv.ParseInt(sizeStr, 10, 64); err == nil {
					totalSize += size
				}
			}
		}
		job.Metadata["folderFiles"] = files
		job.Metadata["totalSize"] = totalSize
		log.Debug().Str("op", "gdrive/initial").Msgf("folder with %d items, %d bytes", len(files), totalSize)
	} else {
		job.Metadata["isFolder"] = false
		if job.OutputPath == "" {
			name, _ := metadata["name"].(string)
			if name == "" {
				name = fileID
			}
			job.OutputPath = name
		}
		var totalSize int64
		if sizeStr, ok := metadata["size"].(string); ok {
			totalSize, _ = strconv.ParseInt(sizeStr, 10, 64)
		}
		job.Metadata["totalSize"] = totalSize
	}
	log.Info().Str("op", "gdrive/initial").Msgf("job built for %s", job.URL)
	return nil
}
