package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amonks/tasktracker/filestore"
	"github.com/amonks/tasktracker/task"
	"github.com/google/uuid"
)

type testEnv struct {
	server    *httptest.Server
	storePath string
	logs      *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithBackend(t, nil)
}

func newTestEnvWithBackend(t *testing.T, backend Backend) *testEnv {
	t.Helper()

	storePath := filepath.Join(t.TempDir(), "tasks.csv")
	if backend == nil {
		store, err := filestore.Open(storePath, filestore.OpenOptions{Location: time.UTC})
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		backend = NewLocal(store)
	}

	logs := &bytes.Buffer{}
	srv, err := New(Options{
		Backend:  backend,
		Logger:   log.New(logs, "", 0),
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	httpServer := httptest.NewServer(srv.Handler())
	t.Cleanup(httpServer.Close)
	return &testEnv{server: httpServer, storePath: storePath, logs: logs}
}

func (env *testEnv) request(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, env.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload map[string]any
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &payload); err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
	}
	return resp, payload
}

func TestNewRequiresBackend(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error without backend")
	}
}

func TestCreateAndGetTask(t *testing.T) {
	env := newTestEnv(t)

	resp, payload := env.request(t, http.MethodPost, "/tasks",
		`{"title":"Write docs","status":"NEW","duration":30,"start_time":"2024-03-01T10:00"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, payload)
	}
	if payload["id"] != float64(1) {
		t.Fatalf("expected id 1, got %v", payload["id"])
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Fatalf("expected generated request id, got %q", resp.Header.Get(RequestIDHeader))
	}

	resp, payload = env.request(t, http.MethodGet, "/tasks/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["kind"] != "TASK" || payload["title"] != "Write docs" || payload["end_time"] != "2024-03-01T10:30" {
		t.Fatalf("unexpected task payload %v", payload)
	}
	if payload["description"] != nil {
		t.Fatalf("expected null description, got %v", payload["description"])
	}

	data, err := os.ReadFile(env.storePath)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if !strings.Contains(string(data), `1,TASK,"Write docs",NEW,null,30,2024-03-01T10:00,`) {
		t.Fatalf("expected task persisted, got:\n%s", data)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)

	env.request(t, http.MethodPost, "/tasks", `{"title":"a","status":"NEW"}`)
	resp, payload := env.request(t, http.MethodPost, "/tasks", `{"id":1,"title":"b","status":"DONE"}`)
	if resp.StatusCode != http.StatusOK || payload["id"] != float64(1) {
		t.Fatalf("expected update 200, got %d %v", resp.StatusCode, payload)
	}
	_, payload = env.request(t, http.MethodGet, "/tasks/1", "")
	if payload["title"] != "b" || payload["status"] != "DONE" {
		t.Fatalf("expected updated task, got %v", payload)
	}

	resp, _ = env.request(t, http.MethodDelete, "/tasks/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected delete 200, got %d", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodGet, "/tasks/1", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestErrorStatuses(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodPost, "/tasks", `{"title":"busy","status":"NEW","duration":60,"start_time":"2024-03-01T10:00"}`)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"missing status", http.MethodPost, "/tasks", `{"title":"x"}`, http.StatusBadRequest, "invalid_status"},
		{"half schedule", http.MethodPost, "/tasks", `{"status":"NEW","duration":5}`, http.StatusBadRequest, "schedule_mismatch"},
		{"short duration", http.MethodPost, "/tasks", `{"status":"NEW","duration":0,"start_time":"2024-03-02T10:00"}`, http.StatusBadRequest, "invalid_duration"},
		{"negative id", http.MethodPost, "/tasks", `{"id":-4,"status":"NEW"}`, http.StatusBadRequest, "invalid_id"},
		{"bad start", http.MethodPost, "/tasks", `{"status":"NEW","duration":5,"start_time":"soon"}`, http.StatusBadRequest, "bad_request"},
		{"unknown field", http.MethodPost, "/tasks", `{"status":"NEW","priority":1}`, http.StatusBadRequest, "bad_request"},
		{"wrong kind in body", http.MethodPost, "/tasks", `{"kind":"EPIC","status":"NEW"}`, http.StatusBadRequest, "bad_request"},
		{"bad path id", http.MethodGet, "/tasks/abc", "", http.StatusBadRequest, "bad_request"},
		{"missing epic", http.MethodPost, "/subtasks", `{"status":"NEW","epic_id":99}`, http.StatusBadRequest, "invalid_epic_reference"},
		{"not found", http.MethodGet, "/epics/1", "", http.StatusNotFound, "not_found"},
		{"missing epic subtasks", http.MethodGet, "/epics/42/subtasks", "", http.StatusNotFound, "not_found"},
		{"overlap", http.MethodPost, "/tasks", `{"status":"NEW","duration":30,"start_time":"2024-03-01T10:30"}`, http.StatusNotAcceptable, "schedule_conflict"},
		{"kind mismatch", http.MethodPost, "/epics", `{"id":1,"title":"x"}`, http.StatusConflict, "kind_mismatch"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, payload := env.request(t, tc.method, tc.path, tc.body)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d (%v)", tc.status, resp.StatusCode, payload)
			}
			if payload["code"] != tc.code {
				t.Fatalf("expected code %q, got %v", tc.code, payload["code"])
			}
			if message, _ := payload["error"].(string); message == "" {
				t.Fatalf("expected error message, got %v", payload)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodPut, "/tasks", `{}`)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestEpicRoutes(t *testing.T) {
	env := newTestEnv(t)

	env.request(t, http.MethodPost, "/epics", `{"title":"Release"}`)
	env.request(t, http.MethodPost, "/subtasks", `{"title":"b","status":"DONE","duration":20,"start_time":"2024-03-01T12:00","epic_id":1}`)
	env.request(t, http.MethodPost, "/subtasks", `{"title":"a","status":"NEW","duration":10,"start_time":"2024-03-01T09:00","epic_id":1}`)

	_, epic := env.request(t, http.MethodGet, "/epics/1", "")
	if epic["status"] != "IN_PROGRESS" || epic["duration"] != float64(30) {
		t.Fatalf("unexpected epic %v", epic)
	}
	if epic["start_time"] != "2024-03-01T09:00" || epic["end_time"] != "2024-03-01T12:20" {
		t.Fatalf("unexpected epic window %v", epic)
	}

	var subtasks []entityJSON
	getJSON(t, env, "/epics/1/subtasks", &subtasks)
	if len(subtasks) != 2 || subtasks[0].ID != 2 || subtasks[1].ID != 3 {
		t.Fatalf("expected subtasks in attachment order, got %+v", subtasks)
	}

	var prioritized []entityJSON
	getJSON(t, env, "/prioritized", &prioritized)
	if len(prioritized) != 2 || prioritized[0].ID != 3 || prioritized[0].Kind != "SUBTASK" {
		t.Fatalf("expected subtask 3 first, got %+v", prioritized)
	}

	resp, _ := env.request(t, http.MethodDelete, "/epics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var remaining []entityJSON
	getJSON(t, env, "/subtasks", &remaining)
	if len(remaining) != 0 {
		t.Fatalf("expected subtasks cleared with epics, got %+v", remaining)
	}
}

func TestHistoryRecordsReads(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodPost, "/tasks", `{"title":"a","status":"NEW"}`)
	env.request(t, http.MethodPost, "/epics", `{"title":"b"}`)

	env.request(t, http.MethodGet, "/tasks/1", "")
	env.request(t, http.MethodGet, "/epics/2", "")
	env.request(t, http.MethodGet, "/tasks/1", "")

	var history []entityJSON
	getJSON(t, env, "/history", &history)
	if len(history) != 2 || history[0].ID != 2 || history[1].ID != 1 {
		t.Fatalf("expected history [2 1], got %+v", history)
	}
}

func TestRequestIDIsLogged(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/tasks/5", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set(RequestIDHeader, "req-123")
	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if resp.Header.Get(RequestIDHeader) != "req-123" {
		t.Fatalf("expected request id echoed, got %q", resp.Header.Get(RequestIDHeader))
	}
	if !strings.Contains(env.logs.String(), "request req-123: GET /tasks/5 failed (404)") {
		t.Fatalf("expected request id in logs, got %q", env.logs.String())
	}
}

// historyPanics panics on History; other methods are never called.
type historyPanics struct {
	Backend
}

func (historyPanics) History(context.Context) ([]task.Entity, error) {
	panic("boom")
}

func TestRecoverHandlerReturnsJSON(t *testing.T) {
	env := newTestEnvWithBackend(t, historyPanics{})

	resp, payload := env.request(t, http.MethodGet, "/history", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if payload["code"] != internalCode {
		t.Fatalf("expected internal code, got %v", payload)
	}
	if !strings.Contains(env.logs.String(), "panic handling GET /history: boom") {
		t.Fatalf("expected panic logged, got %q", env.logs.String())
	}
}

func getJSON(t *testing.T, env *testEnv, path string, dest any) {
	t.Helper()
	resp, err := env.server.Client().Get(env.server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestWebHandlerIsMounted(t *testing.T) {
	store, err := filestore.Open(filepath.Join(t.TempDir(), "tasks.csv"), filestore.OpenOptions{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv, err := New(Options{
		Backend: NewLocal(store),
		Logger:  log.New(io.Discard, "", 0),
		Web: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "board "+r.URL.Path)
		}),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	httpServer := httptest.NewServer(srv.Handler())
	defer httpServer.Close()

	resp, err := http.Get(httpServer.URL + "/web/tasks")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "board /web/tasks" {
		t.Fatalf("unexpected body %q", body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatal("expected request id on web responses")
	}
}
