package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/amonks/tasktracker/task"
)

// ErrBadRequest is returned for requests the server cannot decode.
var ErrBadRequest = errors.New("bad request")

// entityJSON is the wire form of every kind. Durations are whole minutes
// and times use task.TimeLayout.
type entityJSON struct {
	ID          int64       `json:"id,omitempty"`
	Kind        task.Kind   `json:"kind,omitempty"`
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      task.Status `json:"status,omitempty"`
	Duration    *int64      `json:"duration"`
	StartTime   *string     `json:"start_time"`
	EndTime     *string     `json:"end_time,omitempty"`
	EpicID      int64       `json:"epic_id,omitempty"`
	SubtaskIDs  []int64     `json:"subtask_ids,omitempty"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type emptyResponse struct{}

func encodeEntity(e task.Entity) entityJSON {
	switch v := e.(type) {
	case task.Epic:
		out := encodeTask(v.Task, task.KindEpic)
		out.EndTime = formatTime(v.EndTime())
		out.SubtaskIDs = append([]int64{}, v.SubtaskIDs...)
		return out
	case task.Subtask:
		out := encodeTask(v.Task, task.KindSubtask)
		out.EpicID = v.EpicID
		return out
	case task.Task:
		return encodeTask(v, task.KindTask)
	default:
		panic(fmt.Sprintf("unknown entity %T", e))
	}
}

func encodeTask(t task.Task, kind task.Kind) entityJSON {
	out := entityJSON{
		ID:          t.ID,
		Kind:        kind,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		StartTime:   formatTime(t.StartTime),
		EndTime:     formatTime(t.EndTime()),
	}
	if t.Duration != nil {
		minutes := int64(*t.Duration / time.Minute)
		out.Duration = &minutes
	}
	return out
}

func encodeEntities[T task.Entity](items []T) []entityJSON {
	out := make([]entityJSON, 0, len(items))
	for _, item := range items {
		out = append(out, encodeEntity(item))
	}
	return out
}

func formatTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(task.TimeLayout)
	return &formatted
}

func (e entityJSON) entity(loc *time.Location) (task.Entity, error) {
	switch e.Kind {
	case task.KindTask:
		return e.task(task.KindTask, loc)
	case task.KindEpic:
		return e.epic(loc)
	case task.KindSubtask:
		return e.subtask(loc)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrBadRequest, e.Kind)
	}
}

func (e entityJSON) task(want task.Kind, loc *time.Location) (task.Task, error) {
	if e.Kind != "" && e.Kind != want {
		return task.Task{}, fmt.Errorf("%w: kind %q sent to %s endpoint", ErrBadRequest, e.Kind, want)
	}
	out := task.Task{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Status:      e.Status,
	}
	if e.Duration != nil {
		out.Duration = task.MinutesPtr(*e.Duration)
	}
	if e.StartTime != nil {
		start, err := time.ParseInLocation(task.TimeLayout, *e.StartTime, loc)
		if err != nil {
			return task.Task{}, fmt.Errorf("%w: invalid start_time %q", ErrBadRequest, *e.StartTime)
		}
		out.StartTime = &start
	}
	return out, nil
}

func (e entityJSON) epic(loc *time.Location) (task.Epic, error) {
	base, err := e.task(task.KindEpic, loc)
	if err != nil {
		return task.Epic{}, err
	}
	epic := task.Epic{Task: base, SubtaskIDs: e.SubtaskIDs}
	if e.EndTime != nil {
		end, err := time.ParseInLocation(task.TimeLayout, *e.EndTime, loc)
		if err != nil {
			return task.Epic{}, fmt.Errorf("%w: invalid end_time %q", ErrBadRequest, *e.EndTime)
		}
		epic = epic.WithEndTime(&end)
	}
	return epic, nil
}

func (e entityJSON) subtask(loc *time.Location) (task.Subtask, error) {
	base, err := e.task(task.KindSubtask, loc)
	if err != nil {
		return task.Subtask{}, err
	}
	return task.Subtask{Task: base, EpicID: e.EpicID}, nil
}

// errorCodes is ordered most specific first.
var errorCodes = []struct {
	code   string
	err    error
	status int
}{
	{"nil_entity", task.ErrNilEntity, http.StatusBadRequest},
	{"missing_id", task.ErrMissingID, http.StatusBadRequest},
	{"invalid_id", task.ErrInvalidID, http.StatusBadRequest},
	{"invalid_status", task.ErrInvalidStatus, http.StatusBadRequest},
	{"schedule_mismatch", task.ErrScheduleMismatch, http.StatusBadRequest},
	{"invalid_duration", task.ErrInvalidDuration, http.StatusBadRequest},
	{"invalid_input", task.ErrInvalidInput, http.StatusBadRequest},
	{"invalid_epic_reference", task.ErrInvalidEpicReference, http.StatusBadRequest},
	{"bad_request", ErrBadRequest, http.StatusBadRequest},
	{"not_found", task.ErrNotFound, http.StatusNotFound},
	{"schedule_conflict", task.ErrScheduleConflict, http.StatusNotAcceptable},
	{"kind_mismatch", task.ErrKindMismatch, http.StatusConflict},
}

const internalCode = "internal"

func classify(err error) (int, string) {
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.status, entry.code
		}
	}
	return http.StatusInternalServerError, internalCode
}

func errorForCode(code string) error {
	for _, entry := range errorCodes {
		if entry.code == code {
			return entry.err
		}
	}
	return nil
}
