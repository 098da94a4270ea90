// Package labels builds the row-key to label mapping consumed when feature
// tables are materialized, either from an external delimited label file or
// from the folder layout of the input audio files.
package labels

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/avollmer/deepfeat/config"
	"github.com/avollmer/deepfeat/logging"
	"github.com/avollmer/deepfeat/table"
)

// Dictionary maps a row key (basename of the source audio file) to its
// ordered tuple of raw label strings, one per label column. It is built
// once and handed read-only to table writers.
type Dictionary map[string][]string

// Column describes one label column: its name and whether its observed
// domain is numeric or a finite nominal set. For nominal columns Domain
// holds the distinct values that did not parse as numerals, sorted.
type Column struct {
	Name   string
	Type   table.AttrType
	Domain []string
}

// Assignment is the result of label assignment: the dictionary, the
// per-column classification, and the input files the labels cover.
type Assignment struct {
	Dict    Dictionary
	Columns []Column
	Files   []string
}

// MissingLabelsError is raised when input files have no entry in an
// external label file. Keys lists every unmatched row key, sorted.
type MissingLabelsError struct {
	Path string
	Keys []string
}

func (e *MissingLabelsError) Error() string {
	return fmt.Sprintf("no labels in %s for: %s", e.Path, strings.Join(e.Keys, ", "))
}

// FromFile parses an external label file and validates it against the given
// input files. The file is delimited text whose header's first column names
// the row-key field and whose remaining columns are label names; a .tsv
// extension selects tab as the delimiter, anything else comma.
//
// Each label column is classified Numeric when every observed value parses
// as a real or complex numeral. Otherwise it is Nominal with domain = the
// values that failed the numeric probe; values that parse as numbers stay
// out of the domain even inside an otherwise nominal column.
func FromFile(path string, files []string) (*Assignment, error) {
	logger := logging.WithFields(logging.Fields{"component": "labels", "label_file": path})
	logger.Info("Parsing labels")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
	}

	header, err := reader.Read()
	if err != nil || len(header) < 2 {
		return nil, &table.FormatError{Path: path, Line: 1, Msg: "label file needs a header with a key column and at least one label column"}
	}

	names := header[1:]
	dict := make(Dictionary)
	nominal := make([]map[string]struct{}, len(names))
	for i := range nominal {
		nominal[i] = make(map[string]struct{})
	}

	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSVError(path, err)
		}
		line++
		if len(row) != len(header) {
			return nil, &table.FormatError{
				Path: path,
				Line: line,
				Msg:  fmt.Sprintf("label row has %d fields, expected %d", len(row), len(header)),
			}
		}
		dict[row[0]] = row[1:]
		for i, value := range row[1:] {
			if !isNumber(value) {
				nominal[i][value] = struct{}{}
			}
		}
	}

	if err := checkCoverage(path, dict, files); err != nil {
		return nil, err
	}

	columns := make([]Column, len(names))
	for i, name := range names {
		if len(nominal[i]) == 0 {
			columns[i] = Column{Name: name, Type: table.TypeNumeric}
			continue
		}
		columns[i] = Column{Name: name, Type: table.TypeNominal, Domain: sortedKeys(nominal[i])}
	}
	return &Assignment{Dict: dict, Columns: columns, Files: files}, nil
}

// FromFolders derives labels from the directory layout of the input
// folders. Without explicit labels each file's label is the name of its
// immediate parent directory; with explicit labels every file under a
// folder receives that folder's label verbatim. The single label column is
// always nominal, named "class".
func FromFolders(folders []string, explicit []string) (*Assignment, error) {
	if explicit != nil && len(explicit) != len(folders) {
		return nil, &config.ConfigError{
			Msg: fmt.Sprintf("labels have to be specified for each folder: %d expected, %d received", len(folders), len(explicit)),
		}
	}
	logger := logging.WithFields(logging.Fields{"component": "labels"})
	logger.Info("Parsing labels from folder structure", logging.Fields{"folders": folders})

	dict := make(Dictionary)
	domain := make(map[string]struct{})
	var files []string
	for i, folder := range folders {
		wavs, err := config.FindWavFiles(folder)
		if err != nil {
			return nil, err
		}
		for _, wav := range wavs {
			label := filepath.Base(filepath.Dir(wav))
			if explicit != nil {
				label = explicit[i]
			}
			dict[filepath.Base(wav)] = []string{label}
			domain[label] = struct{}{}
		}
		files = append(files, wavs...)
	}

	column := Column{Name: "class", Type: table.TypeNominal, Domain: sortedKeys(domain)}
	return &Assignment{Dict: dict, Columns: []Column{column}, Files: files}, nil
}

// Attributes converts the label columns into writer attributes, to be
// appended after the feature columns when a table is materialized
func (a *Assignment) Attributes() []table.Attribute {
	attrs := make([]table.Attribute, len(a.Columns))
	for i, c := range a.Columns {
		switch c.Type {
		case table.TypeNominal:
			attrs[i] = table.Nominal(c.Name, c.Domain...)
		default:
			attrs[i] = table.Numeric(c.Name)
		}
	}
	return attrs
}

// checkCoverage reports every input file whose basename has no dictionary
// entry. Folder-derived labels cover their inputs by construction, so this
// only applies to external label files.
func checkCoverage(path string, dict Dictionary, files []string) error {
	var missing []string
	for _, file := range files {
		key := filepath.Base(file)
		if _, ok := dict[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingLabelsError{Path: path, Keys: missing}
}

// isNumber reports whether s parses as a real or complex numeral
func isNumber(s string) bool {
	_, err := strconv.ParseComplex(strings.TrimSpace(s), 128)
	return err == nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func wrapCSVError(path string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &table.FormatError{Path: path, Line: parseErr.Line, Msg: parseErr.Err.Error()}
	}
	return fmt.Errorf("read label file %s: %w", path, err)
}
