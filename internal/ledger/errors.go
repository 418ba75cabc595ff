package ledger

import (
	"errors"
	"fmt"
)

// Loader and normalizer errors
var (
	ErrDirectoryNotFound  = errors.New("revenue directory not found")
	ErrNoMatchingFiles    = errors.New("no revenue files matched pattern")
	ErrEmptyDataset       = errors.New("file contains no data rows")
	ErrLabelColumnMissing = errors.New("specification label column not found")
)

// FilenameError indicates a source file whose name does not follow the
// <prefix>-<YYYY>.<ext> convention the year is derived from.
type FilenameError struct {
	Path   string
	Reason string
}

func (e *FilenameError) Error() string {
	return fmt.Sprintf("invalid revenue filename %s: %s", e.Path, e.Reason)
}

// ParseError identifies a malformed numeric cell, including where it came
// from so a curator can fix the source file.
type ParseError struct {
	File   string
	Row    int
	Column string
	Cell   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed numeric cell %q at %s row %d column %q: %v",
		e.Cell, e.File, e.Row, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
