package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avollmer/deepfeat/config"
	"github.com/avollmer/deepfeat/labels"
	"github.com/avollmer/deepfeat/table"
)

func newLabelsCmd() *cobra.Command {
	var (
		folders   []string
		labelFile string
		explicit  []string
	)

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Inspect the label assignment for a set of audio folders",
		Long: "Builds the label dictionary for the .wav files in the given folders, " +
			"either from an external label file or from the folder structure, and " +
			"prints the per-column classification.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var assignment *labels.Assignment
			var err error
			if labelFile != "" {
				var files []string
				for _, folder := range folders {
					wavs, ferr := config.FindWavFiles(folder)
					if ferr != nil {
						return ferr
					}
					files = append(files, wavs...)
				}
				assignment, err = labels.FromFile(labelFile, files)
			} else {
				assignment, err = labels.FromFolders(folders, explicit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d files labeled\n", len(assignment.Dict))
			for i, col := range assignment.Columns {
				if col.Type == table.TypeNominal {
					fmt.Fprintf(out, "%s: nominal {%s}\n", col.Name, strings.Join(col.Domain, ", "))
					weights, werr := assignment.ClassWeights(i)
					if werr == nil {
						for _, class := range col.Domain {
							fmt.Fprintf(out, "  %s: weight %.3f\n", class, weights[class])
						}
					}
					continue
				}
				fmt.Fprintf(out, "%s: numeric\n", col.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&folders, "folders", "f", nil, "Folders containing the input .wav files")
	cmd.Flags().StringVar(&labelFile, "label-file", "", "Delimited label file keyed by file basename (.tsv for tab-delimited)")
	cmd.Flags().StringSliceVar(&explicit, "labels", nil, "Explicit label per folder, in folder order")
	_ = cmd.MarkFlagRequired("folders")

	return cmd
}
