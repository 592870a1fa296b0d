package cmd

import (
	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover temporary download files",
		Run: func(cmd *cobra.Command, args []string) {
			if err := utils.CleanLocal(); err != nil {
				output.PrintError("Cleanup failed")
				return
			}
			output.PrintSuccess("Removed temporary files")
		},
	}
	return cmd
}
