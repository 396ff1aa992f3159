package format

import "fmt"

// FormatError reports a document that could not be parsed.
type FormatError struct {
	Source string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s is not a valid document: %v", e.Source, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing input file.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file %s not found", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// TruncatedRecordError reports a binary record that ends before its header
// or declared value length is complete.
type TruncatedRecordError struct {
	Offset int    // offset of the record start
	Field  string // "id", "length" or "value"
	Need   int
	Have   int
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("truncated record at offset %d: %s needs %d bytes, %d available",
		e.Offset, e.Field, e.Need, e.Have)
}

// WriteError reports a failed output write. The destination is left as it
// was before the write started.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
