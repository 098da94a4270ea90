// Package reduction implements zero-feature reduction: detecting columns
// that hold a zero literal in every row of a feature table and rewriting
// the table without them.
package reduction

import (
	"errors"
	"io"
	"sort"

	"github.com/avollmer/deepfeat/table"
)

// IsZeroLiteral reports whether a cell value is the exact string "0" or
// "0.0". Detection is a string match, never a numeric comparison, so values
// like "0.00" or "-0" are not zero literals.
func IsZeroLiteral(v string) bool {
	return v == "0" || v == "0.0"
}

// DetectZeroColumns streams the table at path once and returns the set of
// zero-based column indices whose value is a zero literal in every row.
// A table with no data rows yields the empty set. The format is selected
// by file extension.
func DetectZeroColumns(path string) (map[int]struct{}, error) {
	r, err := table.Open(path, table.FormatForPath(path))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return detect(r)
}

// detect runs the streaming intersection over an open reader. The candidate
// set is seeded from the first row; each later row intersects it. Once the
// set is empty no further intersections happen, but the pass still drains
// the stream so arity violations surface.
func detect(r *table.Reader) (map[int]struct{}, error) {
	first, err := r.Next()
	if errors.Is(err, io.EOF) {
		return map[int]struct{}{}, nil
	}
	if err != nil {
		return nil, err
	}

	candidates := make(map[int]struct{})
	for i, v := range first {
		if IsZeroLiteral(v) {
			candidates[i] = struct{}{}
		}
	}

	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return candidates, nil
		}
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}
		for i := range candidates {
			if !IsZeroLiteral(row[i]) {
				delete(candidates, i)
			}
		}
	}
}

// sortedIndices returns the set's members in ascending order, for reporting
func sortedIndices(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
