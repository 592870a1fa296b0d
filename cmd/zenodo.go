package cmd

import (
	"os"

	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/scheduler"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/spf13/cobra"
)

func newZenodoCmd() *cobra.Command {
	var outputPath string
	var files []string
	var noExtract bool

	cmd := &cobra.Command{
		Use:   "zenodo [RECORD] [--file NAME ...] [--output DIR]",
		Short: "Download dataset archives from a Zenodo record",
		Long: `Download files of a published Zenodo record and extract tarballs
into the destination directory.

The record can be given as a bare ID, a zenodo.org URL, or a DOI:
  benchfetch zenodo 2235448 --file blur.tar --output data/ImageNet-C
  benchfetch zenodo https://zenodo.org/records/2535967
  benchfetch zenodo 10.5281/zenodo.3555552

With --file given multiple times, each archive becomes its own job so
they can run in parallel with --workers.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			record := args[0]
			var jobs []utils.FetchJob
			if len(files) == 0 {
				jobs = append(jobs, newZenodoJob(record, "", outputPath, !noExtract))
			} else {
				for _, file := range files {
					jobs = append(jobs, newZenodoJob(record, file, outputPath, !noExtract))
				}
			}
			if err := scheduler.Run(jobs, workers, fileLog); err != nil {
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination directory (default: zenodo-<record>)")
	cmd.Flags().StringArrayVarP(&files, "file", "f", []string{}, "Archive name to download; can be specified multiple times (default: all files)")
	cmd.Flags().BoolVar(&noExtract, "no-extract", false, "Keep tarballs as downloaded instead of extracting them")
	return cmd
}

func newZenodoJob(record, file, outputPath string, extract bool) utils.FetchJob {
	job := utils.FetchJob{
		JobType:          "zenodo",
		URL:              record,
		OutputPath:       outputPath,
		Connections:      connections,
		ProgressType:     "progress",
		HTTPClientConfig: globalHTTPConfig,
		Metadata: map[string]any{
			"extract": extract,
		},
	}
	if file != "" {
		job.Metadata["file"] = file
	}
	return job
}
