package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrSourceMissing  = errors.New("source file missing")
	ErrEmptyFile      = errors.New("empty file")
	ErrMissingColumns = errors.New("missing columns")
	ErrValidation     = errors.New("validation error")
)

// MissingColumnsError reports required columns absent from a source file header.
// Always fatal for the file that produced it: a schema violation on a required
// source cannot be recovered row by row.
type MissingColumnsError struct {
	File    string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.File, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

// NewMissingColumnsError creates a MissingColumnsError for the given file.
func NewMissingColumnsError(file string, columns []string) *MissingColumnsError {
	return &MissingColumnsError{File: file, Columns: columns}
}
