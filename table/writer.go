package table

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer streams a table to disk. The header is written on creation; rows
// are appended in the order given and never reordered or buffered beyond
// the underlying bufio layer.
type Writer struct {
	path    string
	format  Format
	file    *os.File
	buf     *bufio.Writer // ARFF sink
	csv     *csv.Writer   // delimited sink
	nAttrs  int
	written int
}

// Create opens path for writing in the given format and emits the complete
// header section. Parent directories are created when absent. ARFF output
// requires every attribute to carry a type; nominal domains are written from
// the supplied Attribute, never recomputed from data.
func Create(path string, format Format, relation string, attrs []Attribute) (*Writer, error) {
	if format == FormatARFF {
		for _, a := range attrs {
			if a.Type == "" {
				return nil, &FormatError{Path: path, Msg: fmt.Sprintf("attribute %q has no type for ARFF output", a.Name)}
			}
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", path, err)
	}

	w := &Writer{path: path, format: format, file: file, nAttrs: len(attrs)}
	switch format {
	case FormatARFF:
		w.buf = bufio.NewWriter(file)
		err = w.writeARFFHeader(relation, attrs)
	case FormatDelimited:
		w.csv = csv.NewWriter(bufio.NewWriter(file))
		names := make([]string, len(attrs))
		for i, a := range attrs {
			names[i] = a.Name
		}
		err = w.csv.Write(names)
	default:
		err = fmt.Errorf("unknown table format %q", format)
	}
	if err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

// Write appends one data row. The field count must match the attribute
// count the writer was created with.
func (w *Writer) Write(row []string) error {
	if len(row) != w.nAttrs {
		return &FormatError{
			Path: w.path,
			Msg:  fmt.Sprintf("row %d has %d fields, expected %d", w.written+1, len(row), w.nAttrs),
		}
	}
	w.written++

	if w.format == FormatARFF {
		for i, v := range row {
			if i > 0 {
				if err := w.buf.WriteByte(','); err != nil {
					return fmt.Errorf("write table %s: %w", w.path, err)
				}
			}
			if _, err := w.buf.WriteString(quoteARFF(v)); err != nil {
				return fmt.Errorf("write table %s: %w", w.path, err)
			}
		}
		if err := w.buf.WriteByte('\n'); err != nil {
			return fmt.Errorf("write table %s: %w", w.path, err)
		}
		return nil
	}

	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("write table %s: %w", w.path, err)
	}
	return nil
}

// Close flushes buffered output and releases the file handle
func (w *Writer) Close() error {
	var flushErr error
	if w.buf != nil {
		flushErr = w.buf.Flush()
	}
	if w.csv != nil {
		w.csv.Flush()
		flushErr = w.csv.Error()
	}
	closeErr := w.file.Close()
	if flushErr != nil {
		return fmt.Errorf("write table %s: %w", w.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close table %s: %w", w.path, closeErr)
	}
	return nil
}

func (w *Writer) writeARFFHeader(relation string, attrs []Attribute) error {
	if relation == "" {
		relation = "Features"
	}
	if _, err := fmt.Fprintf(w.buf, "@relation %s\n\n", quoteARFF(relation)); err != nil {
		return fmt.Errorf("write table %s: %w", w.path, err)
	}
	for _, a := range attrs {
		var decl string
		switch a.Type {
		case TypeNominal:
			quoted := make([]string, len(a.Domain))
			for i, v := range a.Domain {
				quoted[i] = quoteARFF(v)
			}
			decl = "{" + strings.Join(quoted, ",") + "}"
		case TypeString:
			decl = "string"
		default:
			decl = "numeric"
		}
		if _, err := fmt.Fprintf(w.buf, "@attribute %s %s\n", quoteARFF(a.Name), decl); err != nil {
			return fmt.Errorf("write table %s: %w", w.path, err)
		}
	}
	if _, err := fmt.Fprint(w.buf, "\n@data\n"); err != nil {
		return fmt.Errorf("write table %s: %w", w.path, err)
	}
	return nil
}

// quoteARFF single-quotes a token when it contains characters that would
// break ARFF tokenizing, escaping embedded quotes and backslashes.
func quoteARFF(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t,'{}%\"\\") {
		return s
	}
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('\'')
	return b.String()
}
