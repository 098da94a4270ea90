// Package cli implements the deepfeat command-line interface
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avollmer/deepfeat/logging"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "deepfeat",
		Short:         "Deep spectrum feature-file tooling",
		Long:          "Tooling for deep spectrum feature tables: zero-feature reduction, format conversion and label inspection.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				logging.GetGlobalLogger().SetLevel(logging.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newReduceCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newLabelsCmd())

	return rootCmd
}
