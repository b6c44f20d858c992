package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	internalstrings "github.com/amonks/tasktracker/internal/strings"
	"github.com/amonks/tasktracker/task"
	"github.com/spf13/cobra"
)

// noneValue clears an optional field.
const noneValue = "none"

var startLayouts = []string{task.TimeLayout, "2006-01-02 15:04"}

// entityFlags holds the field flags shared by create and update.
type entityFlags struct {
	title       string
	description string
	status      string
	duration    string
	start       string
	epic        int64
}

func (f *entityFlags) register(cmd *cobra.Command, spec kindSpec) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title ('"+noneValue+"' to clear)")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Description (use '-' to read from stdin, '"+noneValue+"' to clear)")
	if spec.kind == task.KindEpic {
		return
	}
	cmd.Flags().StringVar(&f.status, "status", "", "Status (new, in_progress, done)")
	cmd.Flags().StringVar(&f.duration, "duration", "", "Duration in minutes or as 1h30m ('"+noneValue+"' to unschedule)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time as 2006-01-02T15:04 ('"+noneValue+"' to unschedule)")
	if spec.kind == task.KindSubtask {
		cmd.Flags().Int64Var(&f.epic, "epic", 0, "Owning epic id")
	}
}

// apply copies every flag the user set onto d.
func (f *entityFlags) apply(cmd *cobra.Command, d *draft, stdin io.Reader) error {
	flags := cmd.Flags()
	if flags.Changed("title") {
		d.task.Title = optionalText(internalstrings.NormalizeWhitespace(f.title))
	}
	if flags.Changed("description") {
		description, err := resolveDescriptionFromStdin(f.description, stdin)
		if err != nil {
			return err
		}
		d.task.Description = optionalText(description)
	}
	if flags.Lookup("status") != nil && flags.Changed("status") {
		status, err := task.ParseStatus(f.status)
		if err != nil {
			return err
		}
		d.task.Status = status
	}
	if flags.Lookup("duration") != nil && flags.Changed("duration") {
		duration, err := parseDuration(f.duration)
		if err != nil {
			return err
		}
		d.task.Duration = duration
	}
	if flags.Lookup("start") != nil && flags.Changed("start") {
		start, err := parseStart(f.start, time.Local)
		if err != nil {
			return err
		}
		d.task.StartTime = start
	}
	if flags.Lookup("epic") != nil && flags.Changed("epic") {
		d.epicID = f.epic
	}
	return nil
}

func optionalText(value string) *string {
	if value == noneValue {
		return nil
	}
	return task.StringPtr(value)
}

// parseDuration accepts whole minutes or a Go duration.
func parseDuration(value string) (*time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == noneValue || value == "" {
		return nil, nil
	}
	if minutes, err := strconv.ParseInt(value, 10, 64); err == nil {
		return task.MinutesPtr(minutes), nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: use minutes or a value like 1h30m", value)
	}
	return &duration, nil
}

func parseStart(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == noneValue || value == "" {
		return nil, nil
	}
	for _, layout := range startLayouts {
		if start, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &start, nil
		}
	}
	return nil, fmt.Errorf("invalid start %q: use %s", value, task.TimeLayout)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func resolveDescriptionFromStdin(description string, reader io.Reader) (string, error) {
	if description != "-" {
		return description, nil
	}
	if reader == nil {
		reader = os.Stdin
	}

	input, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}
	return internalstrings.TrimTrailingNewlines(internalstrings.NormalizeNewlines(string(input))), nil
}
