// Package etlerr defines the error taxonomy surfaced by a pipeline run.
//
// All three types wrap an optional cause and carry the path they refer to, so
// callers can branch with errors.As while log lines still read naturally:
//
//	var nf *etlerr.NotFoundError
//	if errors.As(err, &nf) { ... }
package etlerr

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing input directory.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// FormatError reports an unrecognized format tag or a file that could not be
// decoded in its declared format.
type FormatError struct {
	Format string
	Path   string
	Err    error
}

func (e *FormatError) Error() string {
	switch {
	case e.Path == "" && e.Err == nil:
		return fmt.Sprintf("format %q: unsupported", e.Format)
	case e.Path == "":
		return fmt.Sprintf("format %q: %v", e.Format, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("format %q: %s", e.Format, e.Path)
	}
	return fmt.Sprintf("format %q: %s: %v", e.Format, e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a failed filesystem or sink operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NotFound returns a *NotFoundError for path.
func NotFound(path string) error { return &NotFoundError{Path: path} }

// Format returns a *FormatError.
func Format(format, path string, err error) error {
	return &FormatError{Format: format, Path: path, Err: err}
}

// IO returns an *IOError, or nil when err is nil.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsFormat reports whether err wraps a *FormatError.
func IsFormat(err error) bool {
	var e *FormatError
	return errors.As(err, &e)
}

// IsIO reports whether err wraps an *IOError.
func IsIO(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}
