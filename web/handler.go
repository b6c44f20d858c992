// Package web serves a small HTML board for browsing and editing tasks.
package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	internalstrings "github.com/amonks/tasktracker/internal/strings"
	"github.com/amonks/tasktracker/internal/ui"
	"github.com/amonks/tasktracker/task"
)

// Backend is the part of the task service the board reads and writes.
type Backend interface {
	Tasks(ctx context.Context) ([]task.Task, error)
	Epics(ctx context.Context) ([]task.Epic, error)
	EpicSubtasks(ctx context.Context, epicID int64) ([]task.Subtask, error)
	PrioritizedTasks(ctx context.Context) ([]task.Entity, error)
	CreateTask(ctx context.Context, t *task.Task) (int64, error)
	UpdateTask(ctx context.Context, t *task.Task) error
}

// Options configures the web handler.
type Options struct {
	Backend Backend

	// Location is used to read start times from forms. Defaults to time.Local.
	Location *time.Location
}

// Handler serves the web board.
type Handler struct {
	backend   Backend
	location  *time.Location
	mux       *http.ServeMux
	templates *templateWrapper

	mu        sync.Mutex
	taskDraft *taskFormDraft
}

// NewHandler creates a new web handler.
func NewHandler(opts Options) *Handler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	handler := &Handler{
		backend:   opts.Backend,
		location:  loc,
		templates: newTemplateWrapper(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/web/", handler.handleIndex)
	mux.HandleFunc("/web/tasks", handler.handleTasks)
	mux.HandleFunc("/web/tasks/create", handler.handleTasksCreate)
	mux.HandleFunc("/web/tasks/update", handler.handleTasksUpdate)
	mux.HandleFunc("/web/epics", handler.handleEpics)
	mux.HandleFunc("/web/schedule", handler.handleSchedule)
	handler.mux = mux
	return handler
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type templateWrapper struct {
	tmpl *template.Template
}

func newTemplateWrapper() *templateWrapper {
	return &templateWrapper{tmpl: newTemplates()}
}

func (tw *templateWrapper) Render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tw.tmpl.ExecuteTemplate(w, "page", data)
}

type pageData struct {
	ActiveTab     string
	Rows          []rowView
	SelectedID    int64
	Selected      *rowView
	Subtasks      []rowView
	Create        bool
	TaskForm      taskFormValues
	Error         string
	StatusOptions []string
}

// rowView is an entity with its fields formatted for display.
type rowView struct {
	ID          int64
	Kind        string
	Title       string
	Description string
	Status      string
	Duration    string
	Start       string
	End         string
	Window      string
	EpicID      int64
	Subtasks    int
}

type taskFormValues struct {
	Title       string
	Description string
	Status      string
	Duration    string
	Start       string
}

type taskFormDraft struct {
	mode   string
	id     int64
	err    string
	values taskFormValues
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/web/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/web/tasks", http.StatusSeeOther)
}

func (h *Handler) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	tasks, err := h.backend.Tasks(r.Context())
	fetchError := ""
	if err != nil {
		fetchError = err.Error()
	}
	rows := make([]rowView, 0, len(tasks))
	for _, item := range tasks {
		rows = append(rows, viewOf(item))
	}

	createMode := r.URL.Query().Get("create") == "1"
	selectedID := queryID(r)
	var selected *rowView
	if !createMode {
		selected = selectRow(rows, selectedID)
		if selected == nil && len(rows) > 0 {
			selected = &rows[0]
		}
	}
	if selected != nil {
		selectedID = selected.ID
	} else {
		selectedID = 0
	}

	formValues := taskFormValues{Status: string(task.StatusNew)}
	if selected != nil {
		formValues = formValuesFromTask(tasks, selected.ID)
	}

	pageError := fetchError
	if draft := h.consumeTaskDraft(createMode, selectedID); draft != nil {
		pageError = draft.err
		formValues = draft.values
		if draft.mode == "create" {
			createMode = true
			selected = nil
			selectedID = 0
		}
	}

	h.templates.Render(w, pageData{
		ActiveTab:     "tasks",
		Rows:          rows,
		SelectedID:    selectedID,
		Selected:      selected,
		Create:        createMode || len(rows) == 0,
		TaskForm:      formValues,
		Error:         pageError,
		StatusOptions: statusOptions(),
	})
}

func (h *Handler) handleTasksCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.setTaskDraft(taskFormDraft{mode: "create", err: "invalid form input"})
		http.Redirect(w, r, "/web/tasks?create=1", http.StatusSeeOther)
		return
	}
	values := taskFormValuesFromRequest(r)
	item, err := values.toTask(h.location)
	if err == nil {
		item.ID, err = h.backend.CreateTask(r.Context(), &item)
	}
	if err != nil {
		h.setTaskDraft(taskFormDraft{mode: "create", err: err.Error(), values: values})
		http.Redirect(w, r, "/web/tasks?create=1", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, taskRedirectPath(item.ID), http.StatusSeeOther)
}

func (h *Handler) handleTasksUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	id := queryID(r)
	if err := r.ParseForm(); err != nil {
		h.setTaskDraft(taskFormDraft{mode: "update", id: id, err: "invalid form input"})
		http.Redirect(w, r, taskRedirectPath(id), http.StatusSeeOther)
		return
	}
	values := taskFormValuesFromRequest(r)
	if id == 0 {
		h.setTaskDraft(taskFormDraft{mode: "update", err: "task id is required", values: values})
		http.Redirect(w, r, taskRedirectPath(id), http.StatusSeeOther)
		return
	}
	item, err := values.toTask(h.location)
	if err == nil {
		item.ID = id
		err = h.backend.UpdateTask(r.Context(), &item)
	}
	if err != nil {
		h.setTaskDraft(taskFormDraft{mode: "update", id: id, err: err.Error(), values: values})
	}
	http.Redirect(w, r, taskRedirectPath(id), http.StatusSeeOther)
}

func (h *Handler) handleEpics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	epics, err := h.backend.Epics(r.Context())
	pageError := ""
	if err != nil {
		pageError = err.Error()
	}
	rows := make([]rowView, 0, len(epics))
	for _, item := range epics {
		rows = append(rows, viewOf(item))
	}

	selected := selectRow(rows, queryID(r))
	if selected == nil && len(rows) > 0 {
		selected = &rows[0]
	}
	var subtasks []rowView
	selectedID := int64(0)
	if selected != nil {
		selectedID = selected.ID
		items, err := h.backend.EpicSubtasks(r.Context(), selected.ID)
		if err != nil {
			pageError = err.Error()
		}
		for _, item := range items {
			subtasks = append(subtasks, viewOf(item))
		}
	}

	h.templates.Render(w, pageData{
		ActiveTab:  "epics",
		Rows:       rows,
		SelectedID: selectedID,
		Selected:   selected,
		Subtasks:   subtasks,
		Error:      pageError,
	})
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	items, err := h.backend.PrioritizedTasks(r.Context())
	pageError := ""
	if err != nil {
		pageError = err.Error()
	}
	rows := make([]rowView, 0, len(items))
	for _, item := range items {
		rows = append(rows, viewOf(item))
	}
	h.templates.Render(w, pageData{ActiveTab: "schedule", Rows: rows, Error: pageError})
}

func (h *Handler) consumeTaskDraft(createMode bool, selectedID int64) *taskFormDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.taskDraft == nil {
		return nil
	}
	draft := h.taskDraft
	match := false
	if draft.mode == "create" && createMode {
		match = true
	}
	if draft.mode == "update" && !createMode && (draft.id == 0 || draft.id == selectedID) {
		match = true
	}
	if !match {
		return nil
	}
	h.taskDraft = nil
	return draft
}

func (h *Handler) setTaskDraft(draft taskFormDraft) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.taskDraft = &draft
}

func viewOf(e task.Entity) rowView {
	var t task.Task
	var end *time.Time
	view := rowView{Kind: strings.ToLower(string(e.Kind()))}
	switch v := e.(type) {
	case task.Task:
		t, end = v, v.EndTime()
	case task.Subtask:
		t, end = v.Task, v.EndTime()
		view.EpicID = v.EpicID
	case task.Epic:
		t, end = v.Task, v.EndTime()
		view.Subtasks = len(v.SubtaskIDs)
	}
	view.ID = t.ID
	view.Title = "(untitled)"
	if t.Title != nil {
		view.Title = *t.Title
	}
	if t.Description != nil {
		view.Description = *t.Description
	}
	view.Status = ui.Placeholder
	if t.Status != "" {
		view.Status = string(t.Status)
	}
	view.Duration = ui.FormatMinutes(t.Duration)
	view.Start = ui.FormatTime(t.StartTime)
	view.End = ui.FormatTime(end)
	view.Window = ui.FormatWindow(t.StartTime, end)
	return view
}

func formValuesFromTask(tasks []task.Task, id int64) taskFormValues {
	for _, item := range tasks {
		if item.ID != id {
			continue
		}
		values := taskFormValues{Status: string(item.Status)}
		if item.Title != nil {
			values.Title = *item.Title
		}
		if item.Description != nil {
			values.Description = *item.Description
		}
		if item.Duration != nil {
			values.Duration = strconv.FormatInt(int64(*item.Duration/time.Minute), 10)
		}
		if item.StartTime != nil {
			values.Start = item.StartTime.Format(task.TimeLayout)
		}
		return values
	}
	return taskFormValues{Status: string(task.StatusNew)}
}

func taskFormValuesFromRequest(r *http.Request) taskFormValues {
	return taskFormValues{
		Title:       trimmedFormValue(r, "title"),
		Description: internalstrings.TrimTrailingNewlines(internalstrings.NormalizeNewlines(r.FormValue("description"))),
		Status:      trimmedFormValue(r, "status"),
		Duration:    trimmedFormValue(r, "duration"),
		Start:       trimmedFormValue(r, "start"),
	}
}

// task converts the form into a task. Empty fields are left unset.
func (values taskFormValues) toTask(loc *time.Location) (task.Task, error) {
	var item task.Task
	if values.Title != "" {
		item.Title = task.StringPtr(values.Title)
	}
	if !internalstrings.IsBlank(values.Description) {
		item.Description = task.StringPtr(values.Description)
	}

	item.Status = task.StatusNew
	if values.Status != "" {
		status, err := task.ParseStatus(values.Status)
		if err != nil {
			return task.Task{}, err
		}
		item.Status = status
	}

	if values.Duration != "" {
		minutes, err := strconv.ParseInt(values.Duration, 10, 64)
		if err != nil {
			return task.Task{}, fmt.Errorf("duration must be a number of minutes")
		}
		item.Duration = task.MinutesPtr(minutes)
	}
	if values.Start != "" {
		start, err := time.ParseInLocation(task.TimeLayout, values.Start, loc)
		if err != nil {
			return task.Task{}, fmt.Errorf("invalid start %q", values.Start)
		}
		item.StartTime = &start
	}
	return item, nil
}

func statusOptions() []string {
	statuses := task.ValidStatuses()
	options := make([]string, 0, len(statuses))
	for _, status := range statuses {
		options = append(options, string(status))
	}
	return options
}

func selectRow(rows []rowView, id int64) *rowView {
	if id == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i]
		}
	}
	return nil
}

func queryID(r *http.Request) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func trimmedFormValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func taskRedirectPath(id int64) string {
	if id == 0 {
		return "/web/tasks"
	}
	return "/web/tasks?id=" + strconv.FormatInt(id, 10)
}

func writeMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
