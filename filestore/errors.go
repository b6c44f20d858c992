package filestore

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when the first line is not Header.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrMalformedRecord is returned when a record cannot be parsed.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDuplicateID is returned when two records share an id.
	ErrDuplicateID = errors.New("duplicate id")
)

// FormatError describes why a stored file could not be loaded. It unwraps to
// one of the errors above or to the task error raised while replaying the
// record.
type FormatError struct {
	// Line is the 1-based line number of the offending record.
	Line int

	// ID is the record's id field as written, or "" when it is not known.
	ID string

	Err error
}

func (e *FormatError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (id %s): %v", e.Line, e.ID, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
