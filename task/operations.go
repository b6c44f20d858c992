package task

// CreateTask stores a copy of t under a freshly minted id and returns the id.
// Any id already set on t is ignored.
func (m *Manager) CreateTask(t *Task) (int64, error) {
	if t == nil {
		return 0, ErrNilEntity
	}
	item := t.clone()
	normalizeSchedule(&item)
	if err := ValidateTask(&item); err != nil {
		return 0, err
	}
	if err := m.checkSchedule(&item, 0); err != nil {
		return 0, err
	}

	item.ID = m.ids.nextID()
	m.ids.claim(item.ID, KindTask)
	m.tasks[item.ID] = &item
	m.schedule.replace(&item, KindTask)
	return item.ID, nil
}

// CreateEpic stores a copy of e under a freshly minted id and returns the id.
// The new epic starts without subtasks, so its status is NEW and its
// schedule is empty whatever e carries.
func (m *Manager) CreateEpic(e *Epic) (int64, error) {
	if e == nil {
		return 0, ErrNilEntity
	}
	item := e.clone()
	item.SubtaskIDs = nil

	item.ID = m.ids.nextID()
	m.ids.claim(item.ID, KindEpic)
	m.epics[item.ID] = &item
	m.refreshEpic(&item)
	return item.ID, nil
}

// CreateSubtask stores a copy of s under a freshly minted id, attaches it to
// its epic and returns the id.
func (m *Manager) CreateSubtask(s *Subtask) (int64, error) {
	if s == nil {
		return 0, ErrNilEntity
	}
	item := s.clone()
	normalizeSchedule(&item.Task)
	if err := ValidateTask(&item.Task); err != nil {
		return 0, err
	}
	epic, err := m.ownerEpic(item.EpicID)
	if err != nil {
		return 0, err
	}
	if err := m.checkSchedule(&item.Task, 0); err != nil {
		return 0, err
	}

	item.ID = m.ids.nextID()
	m.ids.claim(item.ID, KindSubtask)
	m.subtasks[item.ID] = &item
	m.schedule.replace(&item.Task, KindSubtask)
	epic.SubtaskIDs = append(epic.SubtaskIDs, item.ID)
	m.refreshEpic(epic)
	return item.ID, nil
}

// UpdateTask replaces the task stored under t.ID.
//
// If no entity owns t.ID, the task is inserted at that id and the id
// generator is advanced past it. This upsert is kept for compatibility with
// stored data and is not a general PUT convention.
func (m *Manager) UpdateTask(t *Task) error {
	if t == nil {
		return ErrNilEntity
	}
	if err := m.checkKind(t.ID, KindTask); err != nil {
		return err
	}
	item := t.clone()
	normalizeSchedule(&item)
	if err := ValidateTask(&item); err != nil {
		return err
	}
	if err := m.checkSchedule(&item, item.ID); err != nil {
		return err
	}

	m.ids.claim(item.ID, KindTask)
	m.tasks[item.ID] = &item
	m.schedule.replace(&item, KindTask)
	return nil
}

// UpdateEpic replaces the title and description of the epic stored under
// e.ID. The subtask list and derived fields are kept, whatever e carries.
// Unused ids are inserted as in UpdateTask.
func (m *Manager) UpdateEpic(e *Epic) error {
	if e == nil {
		return ErrNilEntity
	}
	if err := m.checkKind(e.ID, KindEpic); err != nil {
		return err
	}
	item := e.clone()
	item.SubtaskIDs = nil
	if existing, ok := m.epics[item.ID]; ok {
		item.SubtaskIDs = existing.SubtaskIDs
	}

	m.ids.claim(item.ID, KindEpic)
	m.epics[item.ID] = &item
	m.refreshEpic(&item)
	return nil
}

// UpdateSubtask replaces the subtask stored under s.ID, moving it between
// epics when s.EpicID changes. Unused ids are inserted as in UpdateTask.
func (m *Manager) UpdateSubtask(s *Subtask) error {
	if s == nil {
		return ErrNilEntity
	}
	if err := m.checkKind(s.ID, KindSubtask); err != nil {
		return err
	}
	item := s.clone()
	normalizeSchedule(&item.Task)
	if err := ValidateTask(&item.Task); err != nil {
		return err
	}
	epic, err := m.ownerEpic(item.EpicID)
	if err != nil {
		return err
	}
	if err := m.checkSchedule(&item.Task, item.ID); err != nil {
		return err
	}

	previous, existed := m.subtasks[item.ID]
	m.ids.claim(item.ID, KindSubtask)
	m.subtasks[item.ID] = &item
	m.schedule.replace(&item.Task, KindSubtask)
	switch {
	case !existed:
		epic.SubtaskIDs = append(epic.SubtaskIDs, item.ID)
	case previous.EpicID != item.EpicID:
		if old, ok := m.epics[previous.EpicID]; ok {
			m.detachSubtask(old, item.ID)
		}
		epic.SubtaskIDs = append(epic.SubtaskIDs, item.ID)
	}
	m.refreshEpic(epic)
	return nil
}

// DeleteTask removes the task.
func (m *Manager) DeleteTask(id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return notFoundError(KindTask, id)
	}
	m.removeTask(id)
	return nil
}

// DeleteEpic removes the epic and every subtask it owns.
func (m *Manager) DeleteEpic(id int64) error {
	epic, ok := m.epics[id]
	if !ok {
		return notFoundError(KindEpic, id)
	}
	for _, subID := range epic.SubtaskIDs {
		m.removeSubtask(subID)
	}
	m.removeEpic(id)
	return nil
}

// DeleteSubtask removes the subtask and refreshes its epic.
func (m *Manager) DeleteSubtask(id int64) error {
	sub, ok := m.subtasks[id]
	if !ok {
		return notFoundError(KindSubtask, id)
	}
	epicID := sub.EpicID
	m.removeSubtask(id)
	if epic, ok := m.epics[epicID]; ok {
		m.detachSubtask(epic, id)
	}
	return nil
}

// DeleteAllTasks removes every task.
func (m *Manager) DeleteAllTasks() {
	for id := range m.tasks {
		m.removeTask(id)
	}
}

// DeleteAllEpics removes every epic and, with them, every subtask.
func (m *Manager) DeleteAllEpics() {
	for id := range m.subtasks {
		m.removeSubtask(id)
	}
	for id := range m.epics {
		m.removeEpic(id)
	}
}

// DeleteAllSubtasks removes every subtask and resets each epic to the
// no-subtasks state.
func (m *Manager) DeleteAllSubtasks() {
	for id := range m.subtasks {
		m.removeSubtask(id)
	}
	for _, epic := range m.epics {
		epic.SubtaskIDs = nil
		m.refreshEpic(epic)
	}
}

// The remove helpers run the same steps in the same order for every kind:
// storage, id registry, schedule index, history.

func (m *Manager) removeTask(id int64) {
	delete(m.tasks, id)
	m.ids.release(id)
	m.schedule.remove(id)
	m.history.remove(id)
}

func (m *Manager) removeSubtask(id int64) {
	delete(m.subtasks, id)
	m.ids.release(id)
	m.schedule.remove(id)
	m.history.remove(id)
}

func (m *Manager) removeEpic(id int64) {
	delete(m.epics, id)
	m.ids.release(id)
	m.history.remove(id)
}

func (m *Manager) detachSubtask(epic *Epic, id int64) {
	kept := epic.SubtaskIDs[:0]
	for _, subID := range epic.SubtaskIDs {
		if subID != id {
			kept = append(kept, subID)
		}
	}
	epic.SubtaskIDs = kept
	m.refreshEpic(epic)
}
