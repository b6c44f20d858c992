package server

import (
	"context"
	"sync"

	"github.com/amonks/tasktracker/filestore"
	"github.com/amonks/tasktracker/task"
)

// Backend is the full set of task operations. Local serves them from a file
// store and Client forwards them to a running server, so callers can drive
// either one.
type Backend interface {
	CreateTask(ctx context.Context, t *task.Task) (int64, error)
	CreateEpic(ctx context.Context, e *task.Epic) (int64, error)
	CreateSubtask(ctx context.Context, s *task.Subtask) (int64, error)

	UpdateTask(ctx context.Context, t *task.Task) error
	UpdateEpic(ctx context.Context, e *task.Epic) error
	UpdateSubtask(ctx context.Context, s *task.Subtask) error

	TaskByID(ctx context.Context, id int64) (task.Task, error)
	EpicByID(ctx context.Context, id int64) (task.Epic, error)
	SubtaskByID(ctx context.Context, id int64) (task.Subtask, error)

	Tasks(ctx context.Context) ([]task.Task, error)
	Epics(ctx context.Context) ([]task.Epic, error)
	Subtasks(ctx context.Context) ([]task.Subtask, error)
	EpicSubtasks(ctx context.Context, epicID int64) ([]task.Subtask, error)

	DeleteTask(ctx context.Context, id int64) error
	DeleteEpic(ctx context.Context, id int64) error
	DeleteSubtask(ctx context.Context, id int64) error
	DeleteAllTasks(ctx context.Context) error
	DeleteAllEpics(ctx context.Context) error
	DeleteAllSubtasks(ctx context.Context) error

	PrioritizedTasks(ctx context.Context) ([]task.Entity, error)
	History(ctx context.Context) ([]task.Entity, error)
}

// Local is a Backend over a file store. Calls are serialized, so a Local may
// be shared between goroutines.
type Local struct {
	mu    sync.Mutex
	store *filestore.Store
}

var _ Backend = (*Local)(nil)

// NewLocal wraps store.
func NewLocal(store *filestore.Store) *Local {
	return &Local{store: store}
}

func (l *Local) CreateTask(ctx context.Context, t *task.Task) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.CreateTask(t)
}

func (l *Local) CreateEpic(ctx context.Context, e *task.Epic) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.CreateEpic(e)
}

func (l *Local) CreateSubtask(ctx context.Context, s *task.Subtask) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.CreateSubtask(s)
}

func (l *Local) UpdateTask(ctx context.Context, t *task.Task) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.UpdateTask(t)
}

func (l *Local) UpdateEpic(ctx context.Context, e *task.Epic) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.UpdateEpic(e)
}

func (l *Local) UpdateSubtask(ctx context.Context, s *task.Subtask) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.UpdateSubtask(s)
}

func (l *Local) TaskByID(ctx context.Context, id int64) (task.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.TaskByID(id)
}

func (l *Local) EpicByID(ctx context.Context, id int64) (task.Epic, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.EpicByID(id)
}

func (l *Local) SubtaskByID(ctx context.Context, id int64) (task.Subtask, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.SubtaskByID(id)
}

func (l *Local) Tasks(ctx context.Context) ([]task.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Tasks(), nil
}

func (l *Local) Epics(ctx context.Context) ([]task.Epic, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Epics(), nil
}

func (l *Local) Subtasks(ctx context.Context) ([]task.Subtask, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Subtasks(), nil
}

func (l *Local) EpicSubtasks(ctx context.Context, epicID int64) ([]task.Subtask, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.EpicSubtasks(epicID)
}

func (l *Local) DeleteTask(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteTask(id)
}

func (l *Local) DeleteEpic(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteEpic(id)
}

func (l *Local) DeleteSubtask(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteSubtask(id)
}

func (l *Local) DeleteAllTasks(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteAllTasks()
}

func (l *Local) DeleteAllEpics(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteAllEpics()
}

func (l *Local) DeleteAllSubtasks(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteAllSubtasks()
}

func (l *Local) PrioritizedTasks(ctx context.Context) ([]task.Entity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.PrioritizedTasks(), nil
}

func (l *Local) History(ctx context.Context) ([]task.Entity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.History(), nil
}
