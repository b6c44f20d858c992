package task

import (
	"fmt"
	"maps"
	"slices"
)

// Options configures a Manager.
type Options struct {
	// HistoryLimit caps the number of history entries. Zero means unlimited.
	HistoryLimit int
}

// Manager owns every task, epic and subtask along with the indexes kept
// alongside them. It is not safe for concurrent use; callers that share a
// Manager must serialize access.
type Manager struct {
	ids      *registry
	tasks    map[int64]*Task
	epics    map[int64]*Epic
	subtasks map[int64]*Subtask
	schedule *scheduleIndex
	history  *history
}

// NewManager returns an empty Manager.
func NewManager(opts Options) *Manager {
	return &Manager{
		ids:      newRegistry(),
		tasks:    make(map[int64]*Task),
		epics:    make(map[int64]*Epic),
		subtasks: make(map[int64]*Subtask),
		schedule: newScheduleIndex(),
		history:  newHistory(opts.HistoryLimit),
	}
}

// KindOf reports which kind owns id, or KindNone.
func (m *Manager) KindOf(id int64) Kind {
	return m.ids.kindOf(id)
}

// NextID returns the id the next create will assign, without consuming it.
func (m *Manager) NextID() int64 {
	return m.ids.peek()
}

// TaskByID returns a snapshot of the task and records the access in history.
func (m *Manager) TaskByID(id int64) (Task, error) {
	item, ok := m.tasks[id]
	if !ok {
		return Task{}, notFoundError(KindTask, id)
	}
	snapshot := item.clone()
	if err := m.history.add(snapshot); err != nil {
		return Task{}, err
	}
	return snapshot, nil
}

// EpicByID returns a snapshot of the epic and records the access in history.
func (m *Manager) EpicByID(id int64) (Epic, error) {
	item, ok := m.epics[id]
	if !ok {
		return Epic{}, notFoundError(KindEpic, id)
	}
	snapshot := item.clone()
	if err := m.history.add(snapshot); err != nil {
		return Epic{}, err
	}
	return snapshot, nil
}

// SubtaskByID returns a snapshot of the subtask and records the access in history.
func (m *Manager) SubtaskByID(id int64) (Subtask, error) {
	item, ok := m.subtasks[id]
	if !ok {
		return Subtask{}, notFoundError(KindSubtask, id)
	}
	snapshot := item.clone()
	if err := m.history.add(snapshot); err != nil {
		return Subtask{}, err
	}
	return snapshot, nil
}

// Tasks returns every task ordered by id. It does not touch history.
func (m *Manager) Tasks() []Task {
	result := make([]Task, 0, len(m.tasks))
	for _, id := range slices.Sorted(maps.Keys(m.tasks)) {
		result = append(result, m.tasks[id].clone())
	}
	return result
}

// Epics returns every epic ordered by id. It does not touch history.
func (m *Manager) Epics() []Epic {
	result := make([]Epic, 0, len(m.epics))
	for _, id := range slices.Sorted(maps.Keys(m.epics)) {
		result = append(result, m.epics[id].clone())
	}
	return result
}

// Subtasks returns every subtask ordered by id. It does not touch history.
func (m *Manager) Subtasks() []Subtask {
	result := make([]Subtask, 0, len(m.subtasks))
	for _, id := range slices.Sorted(maps.Keys(m.subtasks)) {
		result = append(result, m.subtasks[id].clone())
	}
	return result
}

// EpicSubtasks returns the epic's subtasks in the order the epic lists them.
func (m *Manager) EpicSubtasks(epicID int64) ([]Subtask, error) {
	epic, ok := m.epics[epicID]
	if !ok {
		return nil, notFoundError(KindEpic, epicID)
	}
	result := make([]Subtask, 0, len(epic.SubtaskIDs))
	for _, id := range epic.SubtaskIDs {
		sub, ok := m.subtasks[id]
		if !ok {
			return nil, fmt.Errorf("epic %d lists missing subtask %d", epicID, id)
		}
		result = append(result, sub.clone())
	}
	return result, nil
}

// PrioritizedTasks returns every scheduled task and subtask, earliest start first.
func (m *Manager) PrioritizedTasks() []Entity {
	entries := m.schedule.ordered()
	result := make([]Entity, 0, len(entries))
	for _, entry := range entries {
		switch entry.kind {
		case KindTask:
			result = append(result, m.tasks[entry.id].clone())
		case KindSubtask:
			result = append(result, m.subtasks[entry.id].clone())
		}
	}
	return result
}

// History returns snapshots of recently accessed entities, oldest first.
func (m *Manager) History() []Entity {
	return m.history.list()
}

// refreshEpic recomputes the epic's derived fields from its current subtasks.
func (m *Manager) refreshEpic(epic *Epic) {
	subtasks := make([]*Subtask, 0, len(epic.SubtaskIDs))
	for _, id := range epic.SubtaskIDs {
		if sub, ok := m.subtasks[id]; ok {
			subtasks = append(subtasks, sub)
		}
	}
	aggregateSubtasks(subtasks).applyTo(epic)
}

// ownerEpic resolves the epic a subtask points at.
func (m *Manager) ownerEpic(epicID int64) (*Epic, error) {
	if epicID <= 0 {
		return nil, epicReferenceError(epicID, KindNone)
	}
	if kind := m.ids.kindOf(epicID); kind != KindEpic {
		return nil, epicReferenceError(epicID, kind)
	}
	return m.epics[epicID], nil
}

// checkSchedule rejects windows that overlap another scheduled item.
func (m *Manager) checkSchedule(t *Task, excludingID int64) error {
	entry, ok := entryFor(t, KindTask)
	if !ok {
		return nil
	}
	conflict, found := m.schedule.wouldOverlap(entry.start, entry.end, excludingID)
	if !found {
		return nil
	}
	return fmt.Errorf("%w: %s %d is scheduled %s to %s",
		ErrScheduleConflict, conflict.kind.label(), conflict.id,
		conflict.start.Format(TimeLayout), conflict.end.Format(TimeLayout))
}

// checkKind rejects updates that target an id owned by another kind.
func (m *Manager) checkKind(id int64, want Kind) error {
	if err := validateID(id); err != nil {
		return err
	}
	if have := m.ids.kindOf(id); have != KindNone && have != want {
		return kindMismatchError(id, want, have)
	}
	return nil
}
