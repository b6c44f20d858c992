package main

import (
	"context"

	"github.com/amonks/tasktracker/server"
	"github.com/amonks/tasktracker/task"
)

// draft is an entity being built from flags.
type draft struct {
	task   task.Task
	epicID int64
}

// kindSpec binds the generic entity commands to one kind.
type kindSpec struct {
	kind     task.Kind
	singular string
	plural   string

	list   func(context.Context, server.Backend) ([]task.Entity, error)
	get    func(context.Context, server.Backend, int64) (task.Entity, error)
	create func(context.Context, server.Backend, draft) (int64, error)
	update func(context.Context, server.Backend, draft) error
	remove func(context.Context, server.Backend, int64) error
	clear  func(context.Context, server.Backend) error
}

func entities[T task.Entity](items []T) []task.Entity {
	out := make([]task.Entity, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

var taskSpec = kindSpec{
	kind:     task.KindTask,
	singular: "task",
	plural:   "tasks",
	list: func(ctx context.Context, b server.Backend) ([]task.Entity, error) {
		items, err := b.Tasks(ctx)
		return entities(items), err
	},
	get: func(ctx context.Context, b server.Backend, id int64) (task.Entity, error) {
		item, err := b.TaskByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return item, nil
	},
	create: func(ctx context.Context, b server.Backend, d draft) (int64, error) {
		return b.CreateTask(ctx, &d.task)
	},
	update: func(ctx context.Context, b server.Backend, d draft) error {
		return b.UpdateTask(ctx, &d.task)
	},
	remove: func(ctx context.Context, b server.Backend, id int64) error {
		return b.DeleteTask(ctx, id)
	},
	clear: func(ctx context.Context, b server.Backend) error {
		return b.DeleteAllTasks(ctx)
	},
}

var epicSpec = kindSpec{
	kind:     task.KindEpic,
	singular: "epic",
	plural:   "epics",
	list: func(ctx context.Context, b server.Backend) ([]task.Entity, error) {
		items, err := b.Epics(ctx)
		return entities(items), err
	},
	get: func(ctx context.Context, b server.Backend, id int64) (task.Entity, error) {
		item, err := b.EpicByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return item, nil
	},
	create: func(ctx context.Context, b server.Backend, d draft) (int64, error) {
		return b.CreateEpic(ctx, &task.Epic{Task: d.task})
	},
	update: func(ctx context.Context, b server.Backend, d draft) error {
		return b.UpdateEpic(ctx, &task.Epic{Task: d.task})
	},
	remove: func(ctx context.Context, b server.Backend, id int64) error {
		return b.DeleteEpic(ctx, id)
	},
	clear: func(ctx context.Context, b server.Backend) error {
		return b.DeleteAllEpics(ctx)
	},
}

var subtaskSpec = kindSpec{
	kind:     task.KindSubtask,
	singular: "subtask",
	plural:   "subtasks",
	list: func(ctx context.Context, b server.Backend) ([]task.Entity, error) {
		items, err := b.Subtasks(ctx)
		return entities(items), err
	},
	get: func(ctx context.Context, b server.Backend, id int64) (task.Entity, error) {
		item, err := b.SubtaskByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return item, nil
	},
	create: func(ctx context.Context, b server.Backend, d draft) (int64, error) {
		return b.CreateSubtask(ctx, &task.Subtask{Task: d.task, EpicID: d.epicID})
	},
	update: func(ctx context.Context, b server.Backend, d draft) error {
		return b.UpdateSubtask(ctx, &task.Subtask{Task: d.task, EpicID: d.epicID})
	},
	remove: func(ctx context.Context, b server.Backend, id int64) error {
		return b.DeleteSubtask(ctx, id)
	},
	clear: func(ctx context.Context, b server.Backend) error {
		return b.DeleteAllSubtasks(ctx)
	},
}

// existing finds id among the kind's entities without recording history.
// A missing id yields a fresh draft that an update will insert.
func (spec kindSpec) existing(ctx context.Context, b server.Backend, id int64) (draft, bool, error) {
	items, err := spec.list(ctx, b)
	if err != nil {
		return draft{}, false, err
	}
	for _, item := range items {
		if item.EntityID() != id {
			continue
		}
		return draftOf(item), true, nil
	}
	d := draft{task: task.Task{ID: id}}
	if spec.kind != task.KindEpic {
		d.task.Status = task.StatusNew
	}
	return d, false, nil
}

func draftOf(e task.Entity) draft {
	switch v := e.(type) {
	case task.Epic:
		return draft{task: v.Task}
	case task.Subtask:
		return draft{task: v.Task, epicID: v.EpicID}
	case task.Task:
		return draft{task: v}
	}
	return draft{}
}
