package task

import (
	"fmt"
	"time"
)

// normalizeSchedule truncates the schedule to minute precision.
func normalizeSchedule(t *Task) {
	if t.StartTime != nil {
		start := t.StartTime.Truncate(time.Minute)
		t.StartTime = &start
	}
	if t.Duration != nil {
		duration := t.Duration.Truncate(time.Minute)
		t.Duration = &duration
	}
}

// ValidateSchedule checks that duration and start time are paired and that
// the duration is at least one minute.
func ValidateSchedule(t *Task) error {
	if (t.Duration == nil) != (t.StartTime == nil) {
		return ErrScheduleMismatch
	}
	if t.Duration != nil && *t.Duration < time.Minute {
		return fmt.Errorf("%w: got %s", ErrInvalidDuration, *t.Duration)
	}
	return nil
}

// ValidateTask checks the fields a caller controls on tasks and subtasks.
func ValidateTask(t *Task) error {
	if t.Status == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidStatus)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return ValidateSchedule(t)
}

func validateID(id int64) error {
	if id == 0 {
		return ErrMissingID
	}
	if id < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidID, id)
	}
	return nil
}
