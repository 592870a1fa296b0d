package cmd

import (
	"os"

	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/scheduler"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/spf13/cobra"
)

func newHTTPCmd() *cobra.Command {
	var outputPath string
	var extract bool

	cmd := &cobra.Command{
		Use:   "http [URL]",
		Short: "Download a file over HTTP(S)",
		Long: `Download a file over HTTP(S), using ranged parallel connections when
the server supports them.

  benchfetch http https://example.com/datasets/train.tar.gz --extract -o data/`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			job := utils.FetchJob{
				JobType:          "http",
				URL:              args[0],
				OutputPath:       outputPath,
				Connections:      connections,
				ProgressType:     "progress",
				HTTPClientConfig: globalHTTPConfig,
				Metadata: map[string]any{
					"extract": extract,
				},
			}
			if err := scheduler.Run([]utils.FetchJob{job}, workers, fileLog); err != nil {
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: filename from URL)")
	cmd.Flags().BoolVar(&extract, "extract", false, "Extract the file after download if it is a tarball")
	return cmd
}
