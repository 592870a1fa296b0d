package cmd

import (
	"os"

	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/scheduler"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/spf13/cobra"
)

func newGDriveCmd() *cobra.Command {
	var outputPath string
	var apiKey string
	var credentials string

	cmd := &cobra.Command{
		Use:   "google-drive [URL|FILE_ID]",
		Short: "Download a file or folder from Google Drive",
		Long: `Download a publicly shared file with an API key, or any file you can
read with OAuth credentials.

  benchfetch google-drive https://drive.google.com/file/d/FILE_ID/view --api-key AIza...
  benchfetch google-drive FILE_ID --credentials credentials.json`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			metadata := map[string]any{}
			if apiKey != "" {
				metadata["apiKey"] = apiKey
			}
			if credentials != "" {
				metadata["credentialsFile"] = credentials
			}
			job := utils.FetchJob{
				JobType:          "google-drive",
				URL:              args[0],
				OutputPath:       outputPath,
				Connections:      connections,
				ProgressType:     "progress",
				HTTPClientConfig: globalHTTPConfig,
				Metadata:         metadata,
			}
			if err := scheduler.Run([]utils.FetchJob{job}, workers, fileLog); err != nil {
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: name from Drive metadata)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Google API key (for publicly shared files)")
	cmd.Flags().StringVar(&credentials, "credentials", "", "OAuth credentials JSON file")
	return cmd
}
