package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader streams a table from disk. It owns the underlying file handle for
// the duration of the pass; rows are consumed forward-only and never
// buffered, so restarting a pass means opening a new Reader.
type Reader struct {
	path     string
	format   Format
	file     *os.File
	scanner  *bufio.Scanner // ARFF line source
	csv      *csv.Reader    // delimited row source
	relation string
	attrs    []Attribute
	line     int
}

// Open opens path for streaming in the given format and parses the header
// section. For ARFF input the attribute declarations are read up to @data;
// for delimited input the first row becomes the attribute names, with no
// type information attached (this reader never infers types).
func Open(path string, format Format) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", path, err)
	}

	r := &Reader{path: path, format: format, file: file}
	switch format {
	case FormatARFF:
		r.scanner = bufio.NewScanner(bufio.NewReader(file))
		r.scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		err = r.readARFFHeader()
	case FormatDelimited:
		r.csv = csv.NewReader(bufio.NewReader(file))
		r.csv.FieldsPerRecord = -1
		err = r.readDelimitedHeader()
	default:
		err = fmt.Errorf("unknown table format %q", format)
	}
	if err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

// Relation returns the table name. Delimited tables have no declared
// relation and return the empty string.
func (r *Reader) Relation() string {
	return r.relation
}

// Attributes returns the ordered attribute sequence parsed from the header.
// The slice is shared with the reader and must not be modified.
func (r *Reader) Attributes() []Attribute {
	return r.attrs
}

// Next returns the next data row. It returns io.EOF at end of stream and a
// *FormatError when a row's field count disagrees with the attribute count.
func (r *Reader) Next() ([]string, error) {
	var row []string
	var err error
	if r.format == FormatARFF {
		row, err = r.nextARFF()
	} else {
		row, err = r.nextDelimited()
	}
	if err != nil {
		return nil, err
	}
	if len(row) != len(r.attrs) {
		return nil, &FormatError{
			Path: r.path,
			Line: r.line,
			Msg:  fmt.Sprintf("row has %d fields, expected %d", len(row), len(r.attrs)),
		}
	}
	return row, nil
}

// Close releases the underlying file handle
func (r *Reader) Close() error {
	return r.file.Close()
}

func (r *Reader) readARFFHeader() error {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "@relation"):
			name, err := unquote(strings.TrimSpace(line[len("@relation"):]))
			if err != nil {
				return &FormatError{Path: r.path, Line: r.line, Msg: err.Error()}
			}
			r.relation = name
		case strings.HasPrefix(lower, "@attribute"):
			attr, err := parseAttribute(strings.TrimSpace(line[len("@attribute"):]))
			if err != nil {
				return &FormatError{Path: r.path, Line: r.line, Msg: err.Error()}
			}
			r.attrs = append(r.attrs, attr)
		case strings.HasPrefix(lower, "@data"):
			return nil
		default:
			return &FormatError{Path: r.path, Line: r.line, Msg: fmt.Sprintf("unexpected header line %q", line)}
		}
	}
	if err := r.scanner.Err(); err != nil {
		return fmt.Errorf("read table %s: %w", r.path, err)
	}
	return &FormatError{Path: r.path, Line: r.line, Msg: "missing @data section"}
}

func (r *Reader) readDelimitedHeader() error {
	names, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &FormatError{Path: r.path, Line: 0, Msg: "missing header row"}
		}
		return r.wrapCSVError(err)
	}
	r.line = 1
	r.attrs = make([]Attribute, len(names))
	for i, name := range names {
		r.attrs[i] = Attribute{Name: name}
	}
	return nil
}

func (r *Reader) nextARFF() ([]string, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		row, err := splitARFFRow(line)
		if err != nil {
			return nil, &FormatError{Path: r.path, Line: r.line, Msg: err.Error()}
		}
		return row, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read table %s: %w", r.path, err)
	}
	return nil, io.EOF
}

func (r *Reader) nextDelimited() ([]string, error) {
	row, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, r.wrapCSVError(err)
	}
	r.line++
	return row, nil
}

func (r *Reader) wrapCSVError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &FormatError{Path: r.path, Line: parseErr.Line, Msg: parseErr.Err.Error()}
	}
	return fmt.Errorf("read table %s: %w", r.path, err)
}

// parseAttribute parses the remainder of an @attribute line: a possibly
// quoted name followed by a type, which is either a keyword (numeric, real,
// integer, string) or an enumerated nominal domain in braces.
func parseAttribute(s string) (Attribute, error) {
	name, rest, err := takeName(s)
	if err != nil {
		return Attribute{}, err
	}
	typeSpec := strings.TrimSpace(rest)
	if typeSpec == "" {
		return Attribute{}, fmt.Errorf("attribute %q has no type", name)
	}

	if strings.HasPrefix(typeSpec, "{") {
		if !strings.HasSuffix(typeSpec, "}") {
			return Attribute{}, fmt.Errorf("attribute %q: unterminated nominal domain", name)
		}
		values, err := splitARFFRow(typeSpec[1 : len(typeSpec)-1])
		if err != nil {
			return Attribute{}, fmt.Errorf("attribute %q: %v", name, err)
		}
		return Nominal(name, values...), nil
	}

	switch strings.ToLower(typeSpec) {
	case "numeric", "real", "integer":
		return Numeric(name), nil
	case "string":
		return String(name), nil
	}
	return Attribute{}, fmt.Errorf("attribute %q has unsupported type %q", name, typeSpec)
}

// takeName consumes a possibly single-quoted token from the start of s and
// returns it together with the unconsumed remainder.
func takeName(s string) (string, string, error) {
	if !strings.HasPrefix(s, "'") {
		if i := strings.IndexAny(s, " \t"); i >= 0 {
			return s[:i], s[i:], nil
		}
		return s, "", nil
	}
	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '\'':
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("unterminated quoted name in %q", s)
}

// unquote strips optional single quotes from a full token
func unquote(s string) (string, error) {
	if !strings.HasPrefix(s, "'") {
		return s, nil
	}
	name, rest, err := takeName(s)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rest) != "" {
		return "", fmt.Errorf("trailing characters after quoted token in %q", s)
	}
	return name, nil
}

// splitARFFRow splits a comma-separated data row honoring single-quoted
// values with backslash escapes. Unquoted fields are trimmed of surrounding
// whitespace; quoted fields keep theirs.
func splitARFFRow(s string) ([]string, error) {
	var fields []string
	i, n := 0, len(s)
	for {
		for i < n && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i < n && s[i] == '\'' {
			var b strings.Builder
			i++
			escaped, closed := false, false
			for i < n {
				c := s[i]
				i++
				if escaped {
					b.WriteByte(c)
					escaped = false
					continue
				}
				if c == '\\' {
					escaped = true
					continue
				}
				if c == '\'' {
					closed = true
					break
				}
				b.WriteByte(c)
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted value in %q", s)
			}
			for i < n && (s[i] == ' ' || s[i] == '\t') {
				i++
			}
			fields = append(fields, b.String())
			if i == n {
				return fields, nil
			}
			if s[i] != ',' {
				return nil, fmt.Errorf("unexpected character after quoted value in %q", s)
			}
			i++
			continue
		}
		j := i
		for j < n && s[j] != ',' {
			j++
		}
		fields = append(fields, strings.TrimSpace(s[i:j]))
		if j == n {
			return fields, nil
		}
		i = j + 1
	}
}
