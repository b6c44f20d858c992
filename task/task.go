package task

import "time"

// Entity is implemented by Task, Epic and Subtask.
type Entity interface {
	// EntityID returns the id, or 0 when none has been assigned.
	EntityID() int64

	// Kind reports which collection the entity belongs to.
	Kind() Kind

	snapshot() Entity
}

// Task is a plain unit of work. It is also embedded by Epic and Subtask.
//
// Nil pointer fields are "null": a task without a schedule has neither
// Duration nor StartTime.
type Task struct {
	// ID is assigned by the Manager. Zero means unassigned.
	ID int64

	// Title is a short summary (nil when unset).
	Title *string

	// Description provides additional context (nil when unset).
	Description *string

	// Status is required for tasks and subtasks. Epics derive it.
	Status Status

	// Duration is the planned length of the work, in whole minutes.
	Duration *time.Duration

	// StartTime is when the work is scheduled to begin, to the minute.
	StartTime *time.Time
}

// EntityID returns the task id.
func (t Task) EntityID() int64 { return t.ID }

// Kind returns KindTask.
func (t Task) Kind() Kind { return KindTask }

// EndTime returns StartTime plus Duration, or nil when either is unset.
func (t Task) EndTime() *time.Time {
	if t.StartTime == nil || t.Duration == nil {
		return nil
	}
	end := t.StartTime.Add(*t.Duration)
	return &end
}

// TitleText returns the title, or "" when it is unset.
func (t Task) TitleText() string {
	if t.Title == nil {
		return ""
	}
	return *t.Title
}

// DescriptionText returns the description, or "" when it is unset.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

func (t Task) clone() Task {
	t.Title = copyPtr(t.Title)
	t.Description = copyPtr(t.Description)
	t.Duration = copyPtr(t.Duration)
	t.StartTime = copyPtr(t.StartTime)
	return t
}

func (t Task) snapshot() Entity { return t.clone() }

// Epic groups subtasks. Its Status, Duration, StartTime and end time are
// computed from the subtasks; values supplied by callers are overwritten.
type Epic struct {
	Task

	// SubtaskIDs lists owned subtasks in the order they were attached.
	SubtaskIDs []int64

	endTime *time.Time
}

// Kind returns KindEpic.
func (e Epic) Kind() Kind { return KindEpic }

// EndTime returns the latest end among the subtasks, or nil if none is scheduled.
func (e Epic) EndTime() *time.Time {
	return copyPtr(e.endTime)
}

// WithEndTime returns a copy of e reporting end as its end time. It rebuilds
// snapshots that crossed a process boundary; the Manager ignores it.
func (e Epic) WithEndTime(end *time.Time) Epic {
	e = e.clone()
	e.endTime = copyPtr(end)
	return e
}

func (e Epic) clone() Epic {
	e.Task = e.Task.clone()
	e.SubtaskIDs = append([]int64(nil), e.SubtaskIDs...)
	e.endTime = copyPtr(e.endTime)
	return e
}

func (e Epic) snapshot() Entity { return e.clone() }

// Subtask is a task owned by exactly one epic.
type Subtask struct {
	Task

	// EpicID is the owning epic. It is required.
	EpicID int64
}

// Kind returns KindSubtask.
func (s Subtask) Kind() Kind { return KindSubtask }

func (s Subtask) clone() Subtask {
	s.Task = s.Task.clone()
	return s
}

func (s Subtask) snapshot() Entity { return s.clone() }

// StringPtr returns a pointer to the provided string.
func StringPtr(value string) *string {
	return &value
}

// DurationPtr returns a pointer to the provided duration.
func DurationPtr(value time.Duration) *time.Duration {
	return &value
}

// MinutesPtr returns a pointer to a duration of the given number of minutes.
func MinutesPtr(minutes int64) *time.Duration {
	return DurationPtr(time.Duration(minutes) * time.Minute)
}

// TimePtr returns a pointer to the provided time.
func TimePtr(value time.Time) *time.Time {
	return &value
}

func copyPtr[T any](value *T) *T {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
