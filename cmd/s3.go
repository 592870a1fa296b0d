package cmd

import (
	"os"

	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/scheduler"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/spf13/cobra"
)

func newS3Cmd() *cobra.Command {
	var outputPath string
	var profile string
	var extract bool

	cmd := &cobra.Command{
		Use:   "s3 [s3://BUCKET/KEY]",
		Short: "Download an object or prefix from Amazon S3",
		Long: `Download a single object or a whole prefix from S3 using the
credentials of an AWS profile.

  benchfetch s3 s3://my-datasets/imagenet/val.tar --profile research`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			job := utils.FetchJob{
				JobType:          "s3",
				URL:              args[0],
				OutputPath:       outputPath,
				Connections:      connections,
				ProgressType:     "progress",
				HTTPClientConfig: globalHTTPConfig,
				Metadata: map[string]any{
					"profile": profile,
					"extract": extract,
				},
			}
			if err := scheduler.Run([]utils.FetchJob{job}, workers, fileLog); err != nil {
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: object name)")
	cmd.Flags().StringVar(&profile, "profile", "default", "AWS profile to use for credentials")
	cmd.Flags().BoolVar(&extract, "extract", false, "Extract the object after download if it is a tarball")
	return cmd
}
