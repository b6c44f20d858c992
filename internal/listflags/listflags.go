// Package listflags holds flags shared by the list commands.
package listflags

import (
	"github.com/amonks/tasktracker/task"
	"github.com/spf13/cobra"
)

// AddStatusFlag adds a shared, repeatable --status filter to list commands.
func AddStatusFlag(cmd *cobra.Command, target *[]string) {
	cmd.Flags().StringSliceVar(target, "status", nil, "Only show these statuses (repeatable, comma separated)")
}

// StatusFilter keeps entities whose status is in the set. An empty filter
// keeps everything.
type StatusFilter map[task.Status]bool

// ParseStatuses builds a filter from flag values.
func ParseStatuses(values []string) (StatusFilter, error) {
	filter := make(StatusFilter, len(values))
	for _, value := range values {
		status, err := task.ParseStatus(value)
		if err != nil {
			return nil, err
		}
		filter[status] = true
	}
	return filter, nil
}

// Keep returns the entities that pass the filter, preserving order.
func (f StatusFilter) Keep(items []task.Entity) []task.Entity {
	if len(f) == 0 {
		return items
	}
	kept := make([]task.Entity, 0, len(items))
	for _, item := range items {
		if f[statusOf(item)] {
			kept = append(kept, item)
		}
	}
	return kept
}

func statusOf(e task.Entity) task.Status {
	switch v := e.(type) {
	case task.Task:
		return v.Status
	case task.Subtask:
		return v.Status
	case task.Epic:
		return v.Status
	}
	return ""
}
