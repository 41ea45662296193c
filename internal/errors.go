package internal

import (
	"errors"
	"fmt"
)

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrNoSnapshot       = errors.New("no snapshot found")
	ErrEmptyProblem     = errors.New("problem must not be empty")
	ErrEmptySolution    = errors.New("solution must not be empty")
	ErrNotFound         = errors.New("solution not found")
)

// ParseError reports a store or categories file whose YAML syntax is malformed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: yaml syntax error: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StructureError reports a well-formed document that violates the store schema.
// Category, Problem and Field are set when the failure can be pinned to them.
type StructureError struct {
	Path     string
	Msg      string
	Category string
	Problem  string
	Field    string
}

func (e *StructureError) Error() string {
	switch {
	case e.Problem != "" && e.Field != "":
		return fmt.Sprintf("%s: problem %q: %s %q", e.Path, e.Problem, e.Msg, e.Field)
	case e.Problem != "":
		return fmt.Sprintf("%s: problem %q: %s", e.Path, e.Problem, e.Msg)
	case e.Category != "":
		return fmt.Sprintf("%s: category %q: %s", e.Path, e.Category, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: %s %s", e.Path, e.Msg, e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	}
}

// PatternError reports an error category whose regular expression does not compile.
type PatternError struct {
	Path     string
	Category string
	Pattern  string
	Err      error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: invalid regex in category %q: %v", e.Path, e.Category, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure (missing file, permission, disk).
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// TransportError wraps an alert delivery failure.
type TransportError struct {
	Transport string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
