package table

import (
	"errors"
	"io"
)

// Convert re-emits the table at src into dst, each in the format its
// extension selects. Attributes and row values carry over unchanged;
// converting into ARFF fills in numeric types for columns a delimited
// source left untyped, since that is the only type the delimited encoding
// can hold for feature data.
func Convert(src, dst string) error {
	r, err := Open(src, FormatForPath(src))
	if err != nil {
		return err
	}
	defer r.Close()

	attrs := r.Attributes()
	dstFormat := FormatForPath(dst)
	if dstFormat == FormatARFF {
		typed := make([]Attribute, len(attrs))
		copy(typed, attrs)
		for i := range typed {
			if typed[i].Type == "" {
				typed[i].Type = TypeNumeric
			}
		}
		attrs = typed
	}

	w, err := Create(dst, dstFormat, r.Relation(), attrs)
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
		if err := w.Write(row); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
