package zenodo

import (
	"fmt"

	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

type ZenodoFetcher struct{}

func (f *ZenodoFetcher) ValidateJob(job *utils.FetchJob) error {
	recordID, err := parseRecordRef(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["recordID"] = recordID
	if job.Name == "" {
		if fileName, _ := job.Metadata["file"].(string); fileName != "" {
			job.Name = fileName
		} else {
			job.Name = fmt.Sprintf("zenodo record %s", recordID)
		}
	}
	log.Info().Str("op", "zenodo/initial").Msgf("job validated for record %s", recordID)
	return nil
}

func (f *ZenodoFetcher) BuildJob(job *utils.FetchJob) error {
	recordID := job.Metadata["recordID"].(string)
	client := utils.NewBenchHTTPClient(job.HTTPClientConfig)
	record, err := getRecord(recordID, client)
	if err != nil {
		return fmt.Errorf("error fetching record info: %v", err)
	}
	files, err := parseRecordFiles(record, recordID)
	if err != nil {
		return err
	}

	if fileName, _ := job.Metadata["file"].(string); fileName != "" {
		selected, err := selectFile(files, fileName)
		if err != nil {
			return err
		}
		files = []RecordFile{selected}
	}

	var totalSize int64
	for _, rf := range files {
		totalSize += rf.Size
		log.Debug().Str("op", "zenodo/initial").Msgf("selected %s (%d bytes, checksum %s)", rf.Name, rf.Size, rf.Checksum)
	}
	if job.OutputPath == "" {
		job.OutputPath = fmt.Sprintf("zenodo-%s", recordID)
	}
	job.Metadata["files"] = files
	job.Metadata["totalSize"] = totalSize
	log.Info().Str("op", "zenodo/initial").Msgf("job built for record %s with %d file(s)", recordID, len(files))
	return nil
}
