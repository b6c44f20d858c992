// Package task implements an in-memory tracker for tasks, epics and subtasks.
//
// All three kinds share one id space. Epics own subtasks and derive their
// status, duration and time window from them. Tasks and subtasks with a start
// time are kept in a schedule index that rejects overlapping windows.
//
// The public API is the Manager:
//   - CreateTask, CreateEpic, CreateSubtask mint fresh ids
//   - UpdateTask, UpdateEpic, UpdateSubtask replace (or insert at) an id
//   - TaskByID, EpicByID, SubtaskByID read and record history
//   - DeleteTask, DeleteEpic, DeleteSubtask and the DeleteAll variants remove
//   - EpicSubtasks, PrioritizedTasks, History query
package task

import (
	"fmt"
	"strings"
)

// Status represents the progress of a task.
type Status string

const (
	// StatusNew indicates work has not started.
	StatusNew Status = "NEW"

	// StatusInProgress indicates work is underway.
	StatusInProgress Status = "IN_PROGRESS"

	// StatusDone indicates the work is finished.
	StatusDone Status = "DONE"
)

// ValidStatuses returns all valid status values.
func ValidStatuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusDone}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseStatus converts user input such as "in_progress" into a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidStatus, value, formatValidValues(ValidStatuses()))
	}
	return status, nil
}

// Kind identifies which collection owns an id.
type Kind string

const (
	// KindNone is reported for ids that no live entity owns.
	KindNone Kind = ""

	// KindTask is a plain task.
	KindTask Kind = "TASK"

	// KindEpic is a container of subtasks.
	KindEpic Kind = "EPIC"

	// KindSubtask is a task owned by an epic.
	KindSubtask Kind = "SUBTASK"
)

// ValidKinds returns the kinds an entity can have.
func ValidKinds() []Kind {
	return []Kind{KindTask, KindEpic, KindSubtask}
}

// IsValid returns true if the kind names an entity kind.
func (k Kind) IsValid() bool {
	for _, valid := range ValidKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// ParseKind converts user input such as "subtask" into a Kind.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToUpper(strings.TrimSpace(value)))
	if !kind.IsValid() {
		return KindNone, fmt.Errorf("unknown kind %q (valid: %s)", value, formatValidValues(ValidKinds()))
	}
	return kind, nil
}

func (k Kind) label() string {
	if k == KindNone {
		return "nothing"
	}
	return strings.ToLower(string(k))
}

// article returns the label with its indefinite article, as in "an epic".
func (k Kind) article() string {
	label := k.label()
	if k == KindNone {
		return label
	}
	if strings.ContainsRune("aeiou", rune(label[0])) {
		return "an " + label
	}
	return "a " + label
}

// TimeLayout is the minute-precision local date-time layout used when
// start and end times are written as text.
const TimeLayout = "2006-01-02T15:04"

func formatValidValues[T ~string](values []T) string {
	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, string(value))
	}
	return strings.Join(formatted, ", ")
}
