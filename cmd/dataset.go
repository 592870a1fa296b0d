package cmd

import (
	"fmt"
	"os"

	"github.com/benchfetch/benchfetch/internal/datasets"
	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/scheduler"
	"github.com/spf13/cobra"
)

func newDatasetCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "dataset [NAME]",
		Short: "Download a known benchmark dataset by name",
		Long: `Download all archives of a known benchmark dataset and extract them
into its conventional directory. Run without arguments to list the
available datasets.

  benchfetch dataset imagenet-c
  benchfetch dataset cifar10-c --output /mnt/data/CIFAR-10-C`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				output.PrintInfo("Available datasets:")
				for _, name := range datasets.Names() {
					preset, _ := datasets.Lookup(name)
					output.PrintDetail(fmt.Sprintf("%-12s %s (record %s, %d archives -> %s)",
						name, preset.Description, preset.RecordID, len(preset.Archives), preset.Dest))
				}
				return
			}
			preset, ok := datasets.Lookup(args[0])
			if !ok {
				output.PrintError(fmt.Sprintf("Unknown dataset %q; run 'benchfetch dataset' to list", args[0]))
				os.Exit(1)
			}
			jobs := preset.Jobs(outputPath, connections, globalHTTPConfig)
			if err := scheduler.Run(jobs, workers, fileLog); err != nil {
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination directory (default: the dataset's conventional path)")
	return cmd
}
