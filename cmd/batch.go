package cmd

import (
	"fmt"
	"os"

	"github.com/benchfetch/benchfetch/internal/datasets"
	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/scheduler"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// jobTypeAliases maps the section names accepted in a batch file to
// canonical job types.
var jobTypeAliases = map[string]string{
	"http":         "http",
	"https":        "http",
	"zenodo":       "zenodo",
	"dataset":      "dataset",
	"datasets":     "dataset",
	"s3":           "s3",
	"google-drive": "google-drive",
	"gdrive":       "google-drive",
	"git-clone":    "git-clone",
	"gitclone":     "git-clone",
	"git":          "git-clone",
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Run downloads listed in a YAML batch file",
		Long: `Run every download listed in a YAML file. Top-level keys name the
source type, each holding a list of entries:

  zenodo:
    - record: "2235448"
      file: blur.tar
      op: data/ImageNet-C
  dataset:
    - link: cifar10-c
  http:
    - link: https://example.com/labels.tar.gz
      op: data/
  s3:
    - link: s3://my-datasets/imagenet/val.tar
      profile: research
  google-drive:
    - link: https://drive.google.com/file/d/FILE_ID/view
      api-key: AIza...`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				output.PrintError(fmt.Sprintf("Could not read batch file: %v", err))
				os.Exit(1)
			}
			var batch map[string][]utils.BatchEntry
			if err := yaml.Unmarshal(data, &batch); err != nil {
				output.PrintError(fmt.Sprintf("Could not parse batch file: %v", err))
				os.Exit(1)
			}
			jobs, err := buildJobsFromBatch(batch)
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			if len(jobs) == 0 {
				output.PrintWarning("Batch file contains no entries")
				return
			}
			if err := scheduler.Run(jobs, workers, fileLog); err != nil {
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
		},
	}
	return cmd
}

func buildJobsFromBatch(batch map[string][]utils.BatchEntry) ([]utils.FetchJob, error) {
	var jobs []utils.FetchJob
	for section, entries := range batch {
		jobType, ok := jobTypeAliases[section]
		if !ok {
			return nil, fmt.Errorf("unknown batch section %q", section)
		}
		for i, entry := range entries {
			switch jobType {
			case "dataset":
				preset, ok := datasets.Lookup(entry.Link)
				if !ok {
					return nil, fmt.Errorf("%s entry %d: unknown dataset %q", section, i+1, entry.Link)
				}
				jobs = append(jobs, preset.Jobs(entry.OutputPath, connections, globalHTTPConfig)...)
			case "zenodo":
				record := entry.Record
				if record == "" {
					record = entry.Link
				}
				if record == "" {
					return nil, fmt.Errorf("%s entry %d: missing record", section, i+1)
				}
				job := newZenodoJob(record, entry.File, entry.OutputPath, true)
				jobs = append(jobs, job)
			default:
				if entry.Link == "" {
					return nil, fmt.Errorf("%s entry %d: missing link", section, i+1)
				}
				metadata := map[string]any{}
				switch jobType {
				case "s3":
					profile := entry.Profile
					if profile == "" {
						profile = "default"
					}
					metadata["profile"] = profile
				case "google-drive":
					if entry.APIKey == "" && entry.Credentials == "" {
						return nil, fmt.Errorf("%s entry %d: api-key or credentials required", section, i+1)
					}
					if entry.APIKey != "" {
						metadata["apiKey"] = entry.APIKey
					}
					if entry.Credentials != "" {
						metadata["credentialsFile"] = entry.Credentials
					}
				}
				jobs = append(jobs, utils.FetchJob{
					JobType:          jobType,
					URL:              entry.Link,
					OutputPath:       entry.OutputPath,
					Connections:      connections,
					ProgressType:     progressTypeFor(jobType),
					HTTPClientConfig: globalHTTPConfig,
					Metadata:         metadata,
				})
			}
		}
	}
	return jobs, nil
}

func progressTypeFor(jobType string) string {
	if jobType == "git-clone" {
		return "stream"
	}
	return "progress"
}
