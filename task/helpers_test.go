package task

import (
	"testing"
	"time"
)

var baseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(Options{})
}

func at(minutes int) *time.Time {
	return TimePtr(baseTime.Add(time.Duration(minutes) * time.Minute))
}

func scheduledTask(title string, status Status, startMinute, minutes int) *Task {
	return &Task{
		Title:     StringPtr(title),
		Status:    status,
		Duration:  MinutesPtr(int64(minutes)),
		StartTime: at(startMinute),
	}
}

func scheduledSubtask(epicID int64, title string, status Status, startMinute, minutes int) *Subtask {
	return &Subtask{Task: *scheduledTask(title, status, startMinute, minutes), EpicID: epicID}
}

func mustCreateTask(t *testing.T, m *Manager, item *Task) int64 {
	t.Helper()
	id, err := m.CreateTask(item)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return id
}

func mustCreateEpic(t *testing.T, m *Manager, title string) int64 {
	t.Helper()
	id, err := m.CreateEpic(&Epic{Task: Task{Title: StringPtr(title)}})
	if err != nil {
		t.Fatalf("create epic: %v", err)
	}
	return id
}

func mustCreateSubtask(t *testing.T, m *Manager, item *Subtask) int64 {
	t.Helper()
	id, err := m.CreateSubtask(item)
	if err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	return id
}

func mustEpic(t *testing.T, m *Manager, id int64) Epic {
	t.Helper()
	for _, epic := range m.Epics() {
		if epic.ID == id {
			return epic
		}
	}
	t.Fatalf("epic %d not found", id)
	return Epic{}
}

func assertTimeEqual(t *testing.T, label string, got, want *time.Time) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s: expected %v, got %v", label, want, got)
	case !got.Equal(*want):
		t.Errorf("%s: expected %s, got %s", label, want.Format(TimeLayout), got.Format(TimeLayout))
	}
}

func assertDurationEqual(t *testing.T, label string, got, want *time.Duration) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s: expected %v, got %v", label, want, got)
	case *got != *want:
		t.Errorf("%s: expected %s, got %s", label, *want, *got)
	}
}
