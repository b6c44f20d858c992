// Package filestore persists a task.Manager to a single line-oriented text
// file. The file is rewritten in full after every successful mutation.
package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amonks/tasktracker/task"
	"github.com/natefinch/atomic"
)

// Store is a task.Manager whose mutating methods save the file after they
// succeed. Read methods are promoted from the embedded Manager.
//
// Every save rewrites the whole file. If a save fails, the change stays in
// memory but not on disk, and the next successful save writes it out; callers
// that need the file to match should reopen the store after a save error.
type Store struct {
	*task.Manager

	path string
	loc  *time.Location
}

// OpenOptions configures how a store is opened.
type OpenOptions struct {
	// HistoryLimit caps the number of history entries. Zero means unlimited.
	HistoryLimit int

	// Location is used for start times. Defaults to time.Local.
	Location *time.Location
}

// Open loads the file at path. A missing file opens an empty store; the file
// is created by the first mutation.
func Open(path string, opts OpenOptions) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	decodeOpts := DecodeOptions{
		Manager:  task.Options{HistoryLimit: opts.HistoryLimit},
		Location: opts.Location,
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Store{Manager: task.NewManager(decodeOpts.Manager), path: path, loc: opts.Location}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	m, err := Decode(f, decodeOpts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &Store{Manager: m, path: path, loc: opts.Location}, nil
}

// Path returns the file the store writes to.
func (s *Store) Path() string {
	return s.path
}

// Save writes the current state to disk, replacing the previous file.
func (s *Store) Save() error {
	var buf bytes.Buffer
	if err := Encode(&buf, s.Manager, EncodeOptions{Location: s.loc}); err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := atomic.WriteFile(s.path, &buf); err != nil {
		return fmt.Errorf("write store %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) saveID(id int64, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return id, s.Save()
}

func (s *Store) saveErr(err error) error {
	if err != nil {
		return err
	}
	return s.Save()
}

// CreateTask creates the task and saves.
func (s *Store) CreateTask(t *task.Task) (int64, error) {
	return s.saveID(s.Manager.CreateTask(t))
}

// CreateEpic creates the epic and saves.
func (s *Store) CreateEpic(e *task.Epic) (int64, error) {
	return s.saveID(s.Manager.CreateEpic(e))
}

// CreateSubtask creates the subtask and saves.
func (s *Store) CreateSubtask(sub *task.Subtask) (int64, error) {
	return s.saveID(s.Manager.CreateSubtask(sub))
}

// UpdateTask updates the task and saves.
func (s *Store) UpdateTask(t *task.Task) error {
	return s.saveErr(s.Manager.UpdateTask(t))
}

// UpdateEpic updates the epic and saves.
func (s *Store) UpdateEpic(e *task.Epic) error {
	return s.saveErr(s.Manager.UpdateEpic(e))
}

// UpdateSubtask updates the subtask and saves.
func (s *Store) UpdateSubtask(sub *task.Subtask) error {
	return s.saveErr(s.Manager.UpdateSubtask(sub))
}

// DeleteTask deletes the task and saves.
func (s *Store) DeleteTask(id int64) error {
	return s.saveErr(s.Manager.DeleteTask(id))
}

// DeleteEpic deletes the epic with its subtasks and saves.
func (s *Store) DeleteEpic(id int64) error {
	return s.saveErr(s.Manager.DeleteEpic(id))
}

// DeleteSubtask deletes the subtask and saves.
func (s *Store) DeleteSubtask(id int64) error {
	return s.saveErr(s.Manager.DeleteSubtask(id))
}

// DeleteAllTasks deletes every task and saves.
func (s *Store) DeleteAllTasks() error {
	s.Manager.DeleteAllTasks()
	return s.Save()
}

// DeleteAllEpics deletes every epic and subtask and saves.
func (s *Store) DeleteAllEpics() error {
	s.Manager.DeleteAllEpics()
	return s.Save()
}

// DeleteAllSubtasks deletes every subtask and saves.
func (s *Store) DeleteAllSubtasks() error {
	s.Manager.DeleteAllSubtasks()
	return s.Save()
}
