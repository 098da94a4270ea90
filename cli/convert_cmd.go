package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avollmer/deepfeat/table"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Convert a feature file between the ARFF and delimited formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			if err := table.Convert(src, dst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s\n", src, dst)
			return nil
		},
	}
	return cmd
}
