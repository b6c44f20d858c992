package ui

import (
	"os"

	"github.com/amonks/tasktracker/task"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Styles renders styled fragments for one output stream. The zero value
// renders plain text.
type Styles struct {
	enabled bool
	status  map[task.Status]lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
}

// NewStyles returns styles for f, colored only when ColorEnabled(f).
func NewStyles(f *os.File) Styles {
	if !ColorEnabled(f) {
		return Styles{}
	}
	r := lipgloss.NewRenderer(f)
	return Styles{
		enabled: true,
		status: map[task.Status]lipgloss.Style{
			task.StatusNew:        r.NewStyle().Foreground(lipgloss.Color("33")),
			task.StatusInProgress: r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
			task.StatusDone:       r.NewStyle().Foreground(lipgloss.Color("2")),
		},
		label: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// Status renders a status, or the placeholder when it is unset.
func (s Styles) Status(status task.Status) string {
	if status == "" {
		return s.Muted(Placeholder)
	}
	style, ok := s.status[status]
	if !s.enabled || !ok {
		return string(status)
	}
	return style.Render(string(status))
}

// Label renders a field label.
func (s Styles) Label(value string) string {
	if !s.enabled {
		return value
	}
	return s.label.Render(value)
}

// Muted renders secondary text.
func (s Styles) Muted(value string) string {
	if !s.enabled {
		return value
	}
	return s.muted.Render(value)
}

// ColorEnabled reports whether f is a terminal that accepts ANSI styling.
func ColorEnabled(f *os.File) bool {
	if f == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of f, or fallback when f is not a
// terminal.
func TerminalWidth(f *os.File, fallback int) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
