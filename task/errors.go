package task

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the category for malformed arguments. It is never
	// returned bare; the more specific errors below wrap it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNilEntity is returned when a nil entity is passed to a mutation.
	ErrNilEntity = fmt.Errorf("%w: entity is nil", ErrInvalidInput)

	// ErrMissingID is returned when an update has no id.
	ErrMissingID = fmt.Errorf("%w: id is required", ErrInvalidInput)

	// ErrInvalidID is returned for negative ids.
	ErrInvalidID = fmt.Errorf("%w: id must be positive", ErrInvalidInput)

	// ErrInvalidStatus is returned when a status is missing or unknown.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrInvalidInput)

	// ErrScheduleMismatch is returned when only one of duration and start time is set.
	ErrScheduleMismatch = fmt.Errorf("%w: duration and start time must both be set or both be empty", ErrInvalidInput)

	// ErrInvalidDuration is returned for durations shorter than one minute.
	ErrInvalidDuration = fmt.Errorf("%w: duration must be at least one minute", ErrInvalidInput)

	// ErrInvalidEpicReference is returned when a subtask names a missing epic
	// or an id owned by another kind.
	ErrInvalidEpicReference = errors.New("epic reference is invalid")

	// ErrKindMismatch is returned when an update targets an id owned by another kind.
	ErrKindMismatch = errors.New("id belongs to a different kind")

	// ErrScheduleConflict is returned when a time window overlaps a scheduled item.
	ErrScheduleConflict = errors.New("time window overlaps a scheduled item")

	// ErrNotFound is returned when an id does not name a live entity of the requested kind.
	ErrNotFound = errors.New("not found")
)

func notFoundError(kind Kind, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind.label(), id)
}

func kindMismatchError(id int64, want, have Kind) error {
	return fmt.Errorf("%w: %d is %s, not %s", ErrKindMismatch, id, have.article(), want.article())
}

func epicReferenceError(epicID int64, have Kind) error {
	if epicID == 0 {
		return fmt.Errorf("%w: epic id is required", ErrInvalidEpicReference)
	}
	if have == KindNone {
		return fmt.Errorf("%w: epic %d does not exist", ErrInvalidEpicReference, epicID)
	}
	return fmt.Errorf("%w: %d is %s", ErrInvalidEpicReference, epicID, have.article())
}
