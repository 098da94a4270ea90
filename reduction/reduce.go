package reduction

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/avollmer/deepfeat/logging"
	"github.com/avollmer/deepfeat/table"
)

// ReducedPath derives the default destination for a reduced table:
// feat.arff becomes feat.reduced.arff.
func ReducedPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + ".reduced" + ext
}

// Reduce performs zero-feature reduction on a single table: one pass to
// compute the removable-column set, a second pass to re-emit the table
// without those columns. Source and destination formats are selected
// independently by extension, so a table may change encoding while being
// reduced.
func Reduce(src, dst string) error {
	logger := logging.WithFields(logging.Fields{"component": "reduction", "src": src})

	remove, err := DetectZeroColumns(src)
	if err != nil {
		return err
	}
	logger.Info("Selected features to remove", logging.Fields{
		"count":   len(remove),
		"indices": sortedIndices(remove),
	})
	return Apply(src, dst, remove)
}

// Apply re-emits the table at src to dst with the given column indices
// removed. The removable set is typically produced by DetectZeroColumns but
// may come from another file in batch mode.
func Apply(src, dst string, remove map[int]struct{}) error {
	r, err := table.Open(src, table.FormatForPath(src))
	if err != nil {
		return err
	}
	defer r.Close()

	attrs := project(r.Attributes(), remove)
	dstFormat := table.FormatForPath(dst)
	if dstFormat == table.FormatARFF {
		// Delimited sources carry no type declarations; extracted feature
		// columns are numeric.
		for i := range attrs {
			if attrs[i].Type == "" {
				attrs[i].Type = table.TypeNumeric
			}
		}
	}

	relation := r.Relation()
	if relation != "" {
		relation = "Reduced " + relation
	}
	w, err := table.Create(dst, dstFormat, relation, attrs)
	if err != nil {
		return err
	}

	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Close()
			return err
		}
		if err := w.Write(projectRow(row, remove)); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// ReduceBatch reduces several tables against a single reference set of
// removable columns, computed from the first file only and applied
// uniformly: a column constant-zero in the first file is dropped from every
// file, whether or not it is constant there. Each file is written next to
// its source via ReducedPath. Projection is independent per file once the
// set is fixed, so files run concurrently up to the worker limit; one
// file's failure aborts only that file, never completed outputs.
func ReduceBatch(paths []string, workers int) error {
	if len(paths) == 0 {
		return nil
	}
	logger := logging.WithFields(logging.Fields{"component": "reduction"})

	logger.Info("Selecting features to remove", logging.Fields{"reference": paths[0]})
	remove, err := DetectZeroColumns(paths[0])
	if err != nil {
		return fmt.Errorf("detect removable columns in %s: %w", paths[0], err)
	}
	logger.Info("Removing features", logging.Fields{
		"count":   len(remove),
		"indices": sortedIndices(remove),
	})

	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)

	var mu sync.Mutex
	var failures []error
	for _, src := range paths {
		g.Go(func() error {
			logger.Info("Reducing file", logging.Fields{"src": src})
			if err := Apply(src, ReducedPath(src), remove); err != nil {
				logger.Error(err, "Reduction failed", logging.Fields{"src": src})
				mu.Lock()
				failures = append(failures, fmt.Errorf("reduce %s: %w", src, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(failures...)
}

func project(attrs []table.Attribute, remove map[int]struct{}) []table.Attribute {
	out := make([]table.Attribute, 0, len(attrs))
	for i, a := range attrs {
		if _, ok := remove[i]; !ok {
			out = append(out, a)
		}
	}
	return out
}

func projectRow(row []string, remove map[int]struct{}) []string {
	out := make([]string, 0, len(row))
	for i, v := range row {
		if _, ok := remove[i]; !ok {
			out = append(out, v)
		}
	}
	return out
}
