package cmd

import (
	"os"

	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/scheduler"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/spf13/cobra"
)

func newGitCloneCmd() *cobra.Command {
	var outputPath string
	var depth int

	cmd := &cobra.Command{
		Use:   "git-clone [URL]",
		Short: "Clone a git repository (GitHub, GitLab, Bitbucket, Hugging Face)",
		Long: `Clone a repository over HTTPS. Private repositories authenticate with
the GIT_TOKEN environment variable, or with the SSH key named by
GIT_SSH.

  benchfetch git-clone https://huggingface.co/datasets/glue --depth 1`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			metadata := map[string]any{
				"depth": depth,
			}
			if token := os.Getenv("GIT_TOKEN"); token != "" {
				metadata["token"] = token
			}
			if sshKey := os.Getenv("GIT_SSH"); sshKey != "" {
				metadata["sshKey"] = sshKey
			}
			job := utils.FetchJob{
				JobType:          "git-clone",
				URL:              args[0],
				OutputPath:       outputPath,
				Connections:      connections,
				ProgressType:     "stream",
				HTTPClientConfig: globalHTTPConfig,
				Metadata:         metadata,
			}
			if err := scheduler.Run([]utils.FetchJob{job}, workers, fileLog); err != nil {
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output directory (default: repository name)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Create a shallow clone truncated to this many commits")
	return cmd
}
