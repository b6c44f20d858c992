package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amonks/tasktracker/task"
)

// EntityData represents the data used to render the TOML template.
type EntityData struct {
	// Kind selects which fields are offered.
	Kind task.Kind
	// ID is the entity id, or 0 when creating.
	ID int64
	// Title is the entity title.
	Title string
	// Status is the task status. Epics have none of their own.
	Status string
	// Minutes is the duration in minutes, or 0 when unscheduled.
	Minutes int64
	// Start is the start time in task.TimeLayout, or empty when unscheduled.
	Start string
	// EpicID is the owning epic for subtasks.
	EpicID int64
	// Description is the entity description.
	Description string
}

// DataFromTask creates EntityData from the fields of t.
func DataFromTask(kind task.Kind, t task.Task, epicID int64) EntityData {
	data := EntityData{
		Kind:   kind,
		ID:     t.ID,
		Status: string(t.Status),
		EpicID: epicID,
	}
	if t.Title != nil {
		data.Title = *t.Title
	}
	if t.Description != nil {
		data.Description = *t.Description
	}
	if t.Duration != nil {
		data.Minutes = int64(*t.Duration / time.Minute)
	}
	if t.StartTime != nil {
		data.Start = t.StartTime.Format(task.TimeLayout)
	}
	if kind != task.KindEpic && data.Status == "" {
		data.Status = string(task.StatusNew)
	}
	return data
}

var entityTemplate = template.Must(template.New("entity").Funcs(template.FuncMap{
	"statuses": func() string {
		values := make([]string, 0, len(task.ValidStatuses()))
		for _, status := range task.ValidStatuses() {
			values = append(values, string(status))
		}
		return strings.Join(values, ", ")
	},
	"scheduled": func(kind task.Kind) bool {
		return kind != task.KindEpic
	},
}).Parse(`title = {{ printf "%q" .Title }}
{{- if scheduled .Kind }}
status = {{ printf "%q" .Status }} # {{ statuses }}
duration = {{ .Minutes }} # minutes, 0 for none
start = {{ printf "%q" .Start }} # YYYY-MM-DDTHH:MM, empty for none
{{- end }}
{{- if eq .Kind "SUBTASK" }}
epic = {{ .EpicID }}
{{- end }}
---
{{ .Description }}
`))

// RenderEntityTOML renders the entity data as a TOML document for editing.
func RenderEntityTOML(data EntityData) (string, error) {
	var buf bytes.Buffer
	if err := entityTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedEntity represents the parsed result from the TOML editor output.
type ParsedEntity struct {
	Title       string `toml:"title"`
	Status      string `toml:"status"`
	Minutes     int64  `toml:"duration"`
	Start       string `toml:"start"`
	EpicID      int64  `toml:"epic"`
	Description string
}

// ParseEntityTOML parses the TOML content from the editor. Unknown keys are
// rejected so typos do not silently drop a field.
func ParseEntityTOML(content string) (*ParsedEntity, error) {
	frontmatter, body := splitFrontmatter(content)

	var parsed ParsedEntity
	meta, err := toml.Decode(frontmatter, &parsed)
	if err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse TOML: unknown key %q", undecoded[0].String())
	}
	parsed.Title = strings.TrimSpace(parsed.Title)
	parsed.Start = strings.TrimSpace(parsed.Start)
	parsed.Description = strings.TrimSpace(body)
	if parsed.Minutes < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %d", parsed.Minutes)
	}
	return &parsed, nil
}

// Apply copies the parsed fields onto t. Empty values clear the field.
// Start times are read in loc.
func (p *ParsedEntity) Apply(kind task.Kind, t *task.Task, loc *time.Location) error {
	t.Title = optional(p.Title)
	t.Description = optional(p.Description)
	if kind == task.KindEpic {
		return nil
	}

	status, err := task.ParseStatus(p.Status)
	if err != nil {
		return err
	}
	t.Status = status

	t.Duration = nil
	if p.Minutes > 0 {
		t.Duration = task.MinutesPtr(p.Minutes)
	}
	t.StartTime = nil
	if p.Start != "" {
		if loc == nil {
			loc = time.Local
		}
		start, err := time.ParseInLocation(task.TimeLayout, p.Start, loc)
		if err != nil {
			return fmt.Errorf("invalid start %q: use %s", p.Start, task.TimeLayout)
		}
		t.StartTime = &start
	}
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return task.StringPtr(value)
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	separatorIndex := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			separatorIndex = i
			break
		}
	}
	if separatorIndex == -1 {
		return content, ""
	}

	frontmatter := strings.Join(lines[:separatorIndex], "\n")
	body := strings.Join(lines[separatorIndex+1:], "\n")
	return frontmatter, body
}

// EditEntity opens the editor with pre-populated data and returns the parsed result.
func EditEntity(data EntityData) (*ParsedEntity, error) {
	content, err := RenderEntityTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "tt-"+strings.ToLower(string(data.Kind))+"-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return ParseEntityTOML(string(edited))
}
