package feed

// errors.go defines the failure kinds surfaced by the pipelines.
//
// Only three kinds ever reach a caller:
//   - ErrParse: the input could not be opened or decoded
//   - ErrSchema: a required column is missing
//   - ErrWrite: the output could not be written
//
// Detection failures and malformed rows are recovered where they happen and
// only logged. Callers branch on kind with errors.Is:
//
//	if errors.Is(err, feed.ErrSchema) {
//	    // no output was written for this step
//	}

import (
	"errors"
	"strings"
)

var (
	// ErrParse reports input that cannot be opened or decoded.
	ErrParse = errors.New("parse error")

	// ErrSchema reports a missing required column.
	ErrSchema = errors.New("schema error")

	// ErrWrite reports an output path that could not be written.
	ErrWrite = errors.New("write failed")
)

// Error carries a failure kind plus the file, column and cause that produced it.
type Error struct {
	Kind   error  // ErrParse, ErrSchema or ErrWrite
	Op     string // Pipeline step, e.g. "load", "normalize price"
	Path   string // File involved, if any
	Column string // Column involved, if any
	Err    error  // Underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		b.WriteString(" (file ")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Column != "" {
		b.WriteString(" (column ")
		b.WriteString(e.Column)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the error's kind, so errors.Is(err, ErrSchema) works through wrapping.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func parseError(op, path string, err error) error {
	return &Error{Kind: ErrParse, Op: op, Path: path, Err: err}
}

func schemaError(op, column string, err error) error {
	return &Error{Kind: ErrSchema, Op: op, Column: column, Err: err}
}

func writeError(op, path string, err error) error {
	return &Error{Kind: ErrWrite, Op: op, Path: path, Err: err}
}
