package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/amonks/tasktracker/internal/ui"
	"github.com/amonks/tasktracker/task"
)

// formatEntityTable renders entities of one kind, or of mixed kinds when
// kind is KindNone.
func formatEntityTable(items []task.Entity, kind task.Kind) string {
	styles := ui.NewStyles(os.Stdout)

	headers := []string{"ID"}
	if kind == task.KindNone {
		headers = append(headers, "KIND")
	}
	headers = append(headers, "TITLE", "STATUS", "DURATION", "START", "END")
	switch kind {
	case task.KindEpic:
		headers = append(headers, "SUBTASKS")
	case task.KindSubtask:
		headers = append(headers, "EPIC")
	}

	builder := ui.NewTableBuilder(headers, len(items))
	for _, item := range items {
		d := draftOf(item)
		row := []string{strconv.FormatInt(item.EntityID(), 10)}
		if kind == task.KindNone {
			row = append(row, strings.ToLower(string(item.Kind())))
		}
		row = append(row,
			ui.TruncateTableCell(titleOrPlaceholder(d.task)),
			styles.Status(d.task.Status),
			ui.FormatMinutes(d.task.Duration),
			ui.FormatTime(d.task.StartTime),
			ui.FormatTime(endTime(item)),
		)
		switch v := item.(type) {
		case task.Epic:
			if kind == task.KindEpic {
				row = append(row, strconv.Itoa(len(v.SubtaskIDs)))
			}
		case task.Subtask:
			if kind == task.KindSubtask {
				row = append(row, strconv.FormatInt(v.EpicID, 10))
			}
		}
		builder.AddRow(row...)
	}
	return builder.String()
}

// entityView is the JSON form printed by --json.
type entityView struct {
	ID          int64    `json:"id"`
	Kind        string   `json:"kind"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Duration    *int64   `json:"duration_minutes"`
	Start       *string  `json:"start"`
	End         *string  `json:"end"`
	EpicID      *int64   `json:"epic_id,omitempty"`
	SubtaskIDs  *[]int64 `json:"subtask_ids,omitempty"`
}

func viewOf(e task.Entity) entityView {
	d := draftOf(e)
	view := entityView{
		ID:          e.EntityID(),
		Kind:        string(e.Kind()),
		Title:       d.task.Title,
		Description: d.task.Description,
	}
	if d.task.Status != "" {
		status := string(d.task.Status)
		view.Status = &status
	}
	if d.task.Duration != nil {
		minutes := int64(d.task.Duration.Minutes())
		view.Duration = &minutes
	}
	if d.task.StartTime != nil {
		start := d.task.StartTime.Format(task.TimeLayout)
		view.Start = &start
	}
	if end := endTime(e); end != nil {
		formatted := end.Format(task.TimeLayout)
		view.End = &formatted
	}
	switch v := e.(type) {
	case task.Subtask:
		view.EpicID = &v.EpicID
	case task.Epic:
		ids := append([]int64{}, v.SubtaskIDs...)
		view.SubtaskIDs = &ids
	}
	return view
}

func viewsOf(items []task.Entity) []entityView {
	views := make([]entityView, 0, len(items))
	for _, item := range items {
		views = append(views, viewOf(item))
	}
	return views
}
