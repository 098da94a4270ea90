// Package table implements streaming readers and writers for the two
// tabular encodings used by the feature pipeline: the ARFF-style
// sparse-attribute format with a typed header section, and plain
// comma-delimited text with a name-only header row.
package table

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a tabular file encoding
type Format string

const (
	FormatARFF      Format = "arff"
	FormatDelimited Format = "delimited"
)

// FormatForPath selects the encoding by file extension. Only .arff selects
// the sparse-attribute format; everything else is treated as delimited text.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".arff") {
		return FormatARFF
	}
	return FormatDelimited
}

// AttrType is the semantic type of an attribute
type AttrType string

const (
	TypeNumeric AttrType = "numeric"
	TypeNominal AttrType = "nominal"
	TypeString  AttrType = "string"
)

// Attribute is a named column. Domain is only meaningful for nominal
// attributes and lists the allowed values; its order is preserved on write
// but carries no meaning.
type Attribute struct {
	Name   string
	Type   AttrType
	Domain []string
}

// Numeric is a convenience constructor for a numeric attribute
func Numeric(name string) Attribute {
	return Attribute{Name: name, Type: TypeNumeric}
}

// Nominal is a convenience constructor for a nominal attribute
func Nominal(name string, domain ...string) Attribute {
	return Attribute{Name: name, Type: TypeNominal, Domain: domain}
}

// String is a convenience constructor for a string-typed attribute
func String(name string) Attribute {
	return Attribute{Name: name, Type: TypeString}
}

// FormatError reports a structural problem in a table file: a malformed
// header or a row whose field count disagrees with the attribute count.
type FormatError struct {
	Path string
	Line int // 1-based line number in the source file, 0 if unknown
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}
