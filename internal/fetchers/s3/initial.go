package s3

import (
	"fmt"
	"strings"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

type S3Fetcher struct{}

func (f *S3Fetcher) ValidateJob(job *utils.FetchJob) error {
	bucket, key, err := parseS3URL(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["bucket"] = bucket
	job.Metadata["key"] = key
	if job.Name == "" {
		job.Name = fmt.Sprintf("s3://%s/%s", bucket, key)
	}
	log.Info().Str("op", "s3/initial").Msgf("job validated for s3://%s/%s", bucket, key)
	return nil
}

func (f *S3Fetcher) BuildJob(job *utils.FetchJob) error {
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	client, err := getS3Client(profileFrom(job.Metadata))
	if err != nil {
		return fmt.Errorf("error creating S3 client: %v", err)
	}

	fileType, size, err := getS3ObjectInfo(bucket, key, client)
	if err != nil {
		return fmt.Errorf("error getting S3 object info: %v", err)
	}
	job.Metadata["fileType"] = fileType
	job.Metadata["size"] = size
	log.Debug().Str("op", "s3/initial").Msgf("Determined object type: %s, size: %d", fileType, size)

	if job.OutputPath == "" {
		if fileType == "folder" {
			parts := strings.Split(strings.TrimSuffix(key, "/"), "/")
			job.OutputPath = parts[len(parts)-1]
			if job.OutputPath == "" {
				job.OutputPath = bucket
			}
		} else {
			parts := strings.Split(key, "/")
			job.OutputPath = parts[len(parts)-1]
		}
	}

	if fileType == "file" {
		if info, err := fileInfo(job.OutputPath); err == nil && size > 0 && info.Size() == size {
			return utils.ErrAlreadyExists
		}
	}
	log.Info().Str("op", "s3/initial").Msgf("job built for s3://%s/%s", bucket, key)
	return nil
}

// profileFrom returns the AWS profile named in the job metadata, or
// "default" when none was set (batch entries may omit it).
func profileFrom(metadata map[string]any) string {
	if profile, ok := metadata["profile"].(string); ok && profile != "" {
		return profile
	}
	return "default"
}

func parseS3URL(url string) (string, string, error) {
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) < 1 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format")
	}
	bucket := parts[0]
	key := ""
	if len(parts) > 1 {
		key = parts[1]
	}
	return bucket, key, nil
}
