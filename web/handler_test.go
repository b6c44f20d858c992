package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amonks/tasktracker/filestore"
	"github.com/amonks/tasktracker/server"
	"github.com/amonks/tasktracker/task"
)

func newTestServer(t *testing.T) (*httptest.Server, *server.Local) {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "tasks.csv"), filestore.OpenOptions{Location: time.UTC})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	backend := server.NewLocal(store)
	srv := httptest.NewServer(NewHandler(Options{Backend: backend, Location: time.UTC}))
	t.Cleanup(srv.Close)
	return srv, backend
}

func noRedirectClient() *http.Client {
	return &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func getBody(t *testing.T, rawURL string) string {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("get %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return string(body)
}

func TestTasksViewDefaultsToFirstTask(t *testing.T) {
	srv, backend := newTestServer(t)
	ctx := t.Context()
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := backend.CreateTask(ctx, &task.Task{
		Title:     task.StringPtr("First task"),
		Status:    task.StatusNew,
		Duration:  task.MinutesPtr(30),
		StartTime: &start,
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := backend.CreateTask(ctx, &task.Task{Title: task.StringPtr("Second task"), Status: task.StatusDone}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	output := getBody(t, srv.URL+"/web/tasks")
	if !strings.Contains(output, `value="First task"`) {
		t.Fatalf("expected form to include first task title, got %s", output)
	}
	if !strings.Contains(output, `value="2024-03-01T10:00"`) {
		t.Fatalf("expected start in form, got %s", output)
	}
	if !strings.Contains(output, "Second task") {
		t.Fatalf("expected list to include second task")
	}
}

func TestTaskCreateRedirectsToNewTask(t *testing.T) {
	srv, backend := newTestServer(t)

	form := url.Values{}
	form.Set("title", "New task")
	form.Set("status", "in_progress")
	form.Set("duration", "45")
	form.Set("start", "2024-03-01T09:00")
	form.Set("description", "Notes\r\n")

	resp, err := noRedirectClient().PostForm(srv.URL+"/web/tasks/create", form)
	if err != nil {
		t.Fatalf("post create: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/web/tasks?id=1" {
		t.Fatalf("expected redirect to task, got %q", location)
	}

	created, err := backend.TaskByID(t.Context(), 1)
	if err != nil {
		t.Fatalf("task by id: %v", err)
	}
	if created.Status != task.StatusInProgress || *created.Description != "Notes" {
		t.Fatalf("unexpected task %+v", created)
	}
	if end := created.EndTime(); end == nil || !end.Equal(time.Date(2024, 3, 1, 9, 45, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}
}

func TestTaskCreateErrorIsShownOnce(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{}
	form.Set("title", "Half scheduled")
	form.Set("duration", "30")

	resp, err := noRedirectClient().PostForm(srv.URL+"/web/tasks/create", form)
	if err != nil {
		t.Fatalf("post create: %v", err)
	}
	resp.Body.Close()
	if location := resp.Header.Get("Location"); location != "/web/tasks?create=1" {
		t.Fatalf("expected redirect back to create form, got %q", location)
	}

	output := getBody(t, srv.URL+"/web/tasks?create=1")
	if !strings.Contains(output, "both be set or both be empty") {
		t.Fatalf("expected schedule error, got %s", output)
	}
	if !strings.Contains(output, `value="Half scheduled"`) {
		t.Fatalf("expected form values to survive the redirect")
	}

	output = getBody(t, srv.URL+"/web/tasks?create=1")
	if strings.Contains(output, "both be set") {
		t.Fatalf("expected error to be consumed")
	}
}

func TestTaskUpdateReportsConflict(t *testing.T) {
	srv, backend := newTestServer(t)
	ctx := t.Context()
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := backend.CreateTask(ctx, &task.Task{Status: task.StatusNew, Duration: task.MinutesPtr(60), StartTime: &start}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	id, err := backend.CreateTask(ctx, &task.Task{Title: task.StringPtr("Other"), Status: task.StatusNew})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	form := url.Values{}
	form.Set("title", "Other")
	form.Set("status", "NEW")
	form.Set("duration", "30")
	form.Set("start", "2024-03-01T10:30")
	resp, err := noRedirectClient().PostForm(srv.URL+"/web/tasks/update?id=2", form)
	if err != nil {
		t.Fatalf("post update: %v", err)
	}
	resp.Body.Close()

	output := getBody(t, srv.URL+"/web/tasks?id=2")
	if !strings.Contains(output, "overlaps a scheduled item") {
		t.Fatalf("expected conflict error, got %s", output)
	}
	unchanged, err := backend.TaskByID(ctx, id)
	if err != nil {
		t.Fatalf("task by id: %v", err)
	}
	if unchanged.StartTime != nil {
		t.Fatalf("expected task to stay unscheduled, got %v", unchanged.StartTime)
	}
}

func TestEpicsViewListsSubtasks(t *testing.T) {
	srv, backend := newTestServer(t)
	ctx := t.Context()
	epicID, err := backend.CreateEpic(ctx, &task.Epic{Task: task.Task{Title: task.StringPtr("Release")}})
	if err != nil {
		t.Fatalf("create epic: %v", err)
	}
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := backend.CreateSubtask(ctx, &task.Subtask{
		Task:   task.Task{Title: task.StringPtr("Tag <v1>"), Status: task.StatusDone, Duration: task.MinutesPtr(90), StartTime: &start},
		EpicID: epicID,
	}); err != nil {
		t.Fatalf("create subtask: %v", err)
	}

	output := getBody(t, srv.URL+"/web/epics")
	if !strings.Contains(output, "Epic 1 · DONE · 1h30m · 2024-03-01 10:00-11:30") {
		t.Fatalf("expected epic status from subtasks, got %s", output)
	}
	if !strings.Contains(output, "Tag &lt;v1&gt;") {
		t.Fatalf("expected escaped subtask title")
	}
}

func TestScheduleView(t *testing.T) {
	srv, backend := newTestServer(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := backend.CreateTask(t.Context(), &task.Task{
		Title:     task.StringPtr("Standup"),
		Status:    task.StatusNew,
		Duration:  task.MinutesPtr(15),
		StartTime: &start,
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	output := getBody(t, srv.URL+"/web/schedule")
	if !strings.Contains(output, "<td>Standup</td>") || !strings.Contains(output, "<td>2024-03-01 10:15</td>") {
		t.Fatalf("expected scheduled task row, got %s", output)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/web/tasks", "text/plain", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed || resp.Header.Get("Allow") != http.MethodGet {
		t.Fatalf("expected 405 with Allow GET, got %d %q", resp.StatusCode, resp.Header.Get("Allow"))
	}
}

func TestIndexRedirectsToTasks(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := noRedirectClient().Get(srv.URL + "/web/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("Location") != "/web/tasks" {
		t.Fatalf("expected redirect to tasks, got %q", resp.Header.Get("Location"))
	}
}
