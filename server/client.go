package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/tasktracker/task"
)

// ClientOptions configures a client.
type ClientOptions struct {
	// HTTPClient defaults to a client with a ten second timeout.
	HTTPClient *http.Client

	// Location is used to read start and end times. Defaults to time.Local.
	Location *time.Location
}

// Client calls a task server. Errors returned by the server unwrap to the
// same task errors a Local backend would return.
type Client struct {
	baseURL  string
	client   *http.Client
	location *time.Location
}

var _ Backend = (*Client)(nil)

// NewClient creates a client for the given address or URL.
func NewClient(addr string, opts ClientOptions) *Client {
	baseURL := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{baseURL: baseURL, client: httpClient, location: loc}
}

// RemoteError is an error reported by the server.
type RemoteError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap returns the task error matching the server's error code, if any.
func (e *RemoteError) Unwrap() error {
	return errorForCode(e.Code)
}

func (c *Client) CreateTask(ctx context.Context, t *task.Task) (int64, error) {
	if t == nil {
		return 0, task.ErrNilEntity
	}
	payload := encodeTask(*t, task.KindTask)
	payload.ID = 0
	return c.create(ctx, "/tasks", payload)
}

func (c *Client) CreateEpic(ctx context.Context, e *task.Epic) (int64, error) {
	if e == nil {
		return 0, task.ErrNilEntity
	}
	payload := encodeEntity(*e)
	payload.ID = 0
	return c.create(ctx, "/epics", payload)
}

func (c *Client) CreateSubtask(ctx context.Context, s *task.Subtask) (int64, error) {
	if s == nil {
		return 0, task.ErrNilEntity
	}
	payload := encodeEntity(*s)
	payload.ID = 0
	return c.create(ctx, "/subtasks", payload)
}

func (c *Client) UpdateTask(ctx context.Context, t *task.Task) error {
	if t == nil {
		return task.ErrNilEntity
	}
	return c.update(ctx, "/tasks", encodeTask(*t, task.KindTask))
}

func (c *Client) UpdateEpic(ctx context.Context, e *task.Epic) error {
	if e == nil {
		return task.ErrNilEntity
	}
	return c.update(ctx, "/epics", encodeEntity(*e))
}

func (c *Client) UpdateSubtask(ctx context.Context, s *task.Subtask) error {
	if s == nil {
		return task.ErrNilEntity
	}
	return c.update(ctx, "/subtasks", encodeEntity(*s))
}

func (c *Client) TaskByID(ctx context.Context, id int64) (task.Task, error) {
	var out entityJSON
	if err := c.do(ctx, http.MethodGet, itemPath("/tasks", id), nil, &out); err != nil {
		return task.Task{}, err
	}
	return out.task(task.KindTask, c.location)
}

func (c *Client) EpicByID(ctx context.Context, id int64) (task.Epic, error) {
	var out entityJSON
	if err := c.do(ctx, http.MethodGet, itemPath("/epics", id), nil, &out); err != nil {
		return task.Epic{}, err
	}
	return out.epic(c.location)
}

func (c *Client) SubtaskByID(ctx context.Context, id int64) (task.Subtask, error) {
	var out entityJSON
	if err := c.do(ctx, http.MethodGet, itemPath("/subtasks", id), nil, &out); err != nil {
		return task.Subtask{}, err
	}
	return out.subtask(c.location)
}

func (c *Client) Tasks(ctx context.Context) ([]task.Task, error) {
	return listAs(c, ctx, "/tasks", func(e entityJSON) (task.Task, error) {
		return e.task(task.KindTask, c.location)
	})
}

func (c *Client) Epics(ctx context.Context) ([]task.Epic, error) {
	return listAs(c, ctx, "/epics", func(e entityJSON) (task.Epic, error) {
		return e.epic(c.location)
	})
}

func (c *Client) Subtasks(ctx context.Context) ([]task.Subtask, error) {
	return listAs(c, ctx, "/subtasks", func(e entityJSON) (task.Subtask, error) {
		return e.subtask(c.location)
	})
}

func (c *Client) EpicSubtasks(ctx context.Context, epicID int64) ([]task.Subtask, error) {
	return listAs(c, ctx, itemPath("/epics", epicID)+"/subtasks", func(e entityJSON) (task.Subtask, error) {
		return e.subtask(c.location)
	})
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath("/tasks", id), nil, &emptyResponse{})
}

func (c *Client) DeleteEpic(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath("/epics", id), nil, &emptyResponse{})
}

func (c *Client) DeleteSubtask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath("/subtasks", id), nil, &emptyResponse{})
}

func (c *Client) DeleteAllTasks(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/tasks", nil, &emptyResponse{})
}

func (c *Client) DeleteAllEpics(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/epics", nil, &emptyResponse{})
}

func (c *Client) DeleteAllSubtasks(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/subtasks", nil, &emptyResponse{})
}

func (c *Client) PrioritizedTasks(ctx context.Context) ([]task.Entity, error) {
	return listAs(c, ctx, "/prioritized", func(e entityJSON) (task.Entity, error) {
		return e.entity(c.location)
	})
}

func (c *Client) History(ctx context.Context) ([]task.Entity, error) {
	return listAs(c, ctx, "/history", func(e entityJSON) (task.Entity, error) {
		return e.entity(c.location)
	})
}

func (c *Client) create(ctx context.Context, path string, payload entityJSON) (int64, error) {
	var out idResponse
	if err := c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// update posts payload with its id. An id of zero would be read as a create,
// so it is rejected here the way the manager would reject it.
func (c *Client) update(ctx context.Context, path string, payload entityJSON) error {
	if payload.ID == 0 {
		return task.ErrMissingID
	}
	return c.do(ctx, http.MethodPost, path, payload, &idResponse{})
}

func listAs[T any](c *Client, ctx context.Context, path string, convert func(entityJSON) (T, error)) ([]T, error) {
	var items []entityJSON
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		converted, err := convert(item)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func itemPath(collection string, id int64) string {
	return collection + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, dest any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readErrorResponse(resp *http.Response) error {
	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return &RemoteError{StatusCode: resp.StatusCode, Code: payload.Code, Message: payload.Error}
	}
	return &RemoteError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("server error: %s", resp.Status)}
}
