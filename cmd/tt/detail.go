package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/tasktracker/internal/markdown"
	"github.com/amonks/tasktracker/internal/ui"
	"github.com/amonks/tasktracker/task"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const (
	detailLineWidth   = 80
	descriptionIndent = 2
)

var showPlain bool

// printEntityDetail prints detailed information about an entity.
func printEntityDetail(w io.Writer, e task.Entity) {
	styles := ui.NewStyles(os.Stdout)
	d := draftOf(e)
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", styles.Label(fmt.Sprintf("%-9s", label+":")), value)
	}

	row("ID", strconv.FormatInt(e.EntityID(), 10))
	row("Kind", strings.ToLower(string(e.Kind())))
	row("Title", titleOrPlaceholder(d.task))
	row("Status", styles.Status(d.task.Status))
	row("Duration", ui.FormatMinutes(d.task.Duration))
	row("Start", ui.FormatTime(d.task.StartTime))
	row("End", ui.FormatTime(endTime(e)))

	switch v := e.(type) {
	case task.Subtask:
		row("Epic", strconv.FormatInt(v.EpicID, 10))
	case task.Epic:
		row("Subtasks", formatIDs(v.SubtaskIDs))
	}

	if d.task.Description != nil {
		fmt.Fprintf(w, "\n%s\n%s\n", styles.Label("Description:"), formatDescription(*d.task.Description))
	}
}

func formatDescription(value string) string {
	width := ui.TerminalWidth(os.Stdout, detailLineWidth)
	if !showPlain {
		if rendered := markdown.SafeRender(width, descriptionIndent, []byte(value)); rendered != nil {
			return string(rendered)
		}
	}
	wrapped := wordwrap.String(value, width-descriptionIndent)
	return strings.TrimRight(indent.String(wrapped, uint(descriptionIndent)), " \n")
}

func endTime(e task.Entity) *time.Time {
	switch v := e.(type) {
	case task.Epic:
		return v.EndTime()
	case task.Subtask:
		return v.EndTime()
	case task.Task:
		return v.EndTime()
	}
	return nil
}

func formatIDs(ids []int64) string {
	if len(ids) == 0 {
		return ui.Placeholder
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ", ")
}
