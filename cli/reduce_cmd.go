package cli

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/avollmer/deepfeat/reduction"
)

func newReduceCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "reduce <file>...",
		Short: "Remove zero features from feature files",
		Long: "Removes columns that are constant zero across an entire feature file. " +
			"With several files the removable columns are selected from the first file " +
			"only and applied to all of them, so a batch stays column-compatible. Each " +
			"result is written next to its source with a .reduced suffix.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]string, len(args))
			for i, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", arg, err)
				}
				paths[i] = abs
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Selecting features to remove from %s...\n", paths[0])
			if err := reduction.ReduceBatch(paths, workers); err != nil {
				return err
			}
			for _, src := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "Reduced %s -> %s\n", src, reduction.ReducedPath(src))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of files to reduce in parallel")

	return cmd
}
