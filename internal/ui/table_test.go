package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateTableCellCountsRunes(t *testing.T) {
	value := strings.Repeat("a", tableCellMaxWidth-1) + "é"

	if got := TruncateTableCell(value); got != value {
		t.Fatalf("expected value to remain untruncated, got %q", got)
	}
}

func TestTruncateTableCellShortensLongValues(t *testing.T) {
	got := TruncateTableCell(strings.Repeat("b", tableCellMaxWidth+10))

	if lipgloss.Width(got) != tableCellMaxWidth {
		t.Fatalf("expected width %d, got %d", tableCellMaxWidth, lipgloss.Width(got))
	}
	if !strings.HasSuffix(got, tableCellEllipsis) {
		t.Fatalf("expected ellipsis, got %q", got)
	}
}

func TestTruncateTableCellNormalizesLineBreaks(t *testing.T) {
	if got := TruncateTableCell("Hello\nWorld\r\nAgain\tTab"); got != "Hello World Again Tab" {
		t.Fatalf("expected line breaks to normalize, got %q", got)
	}
}

func TestTruncateTableCellIgnoresANSICodes(t *testing.T) {
	value := "\x1b[1m\x1b[36m" + strings.Repeat("a", tableCellMaxWidth) + "\x1b[0m"

	if got := TruncateTableCell(value); got != value {
		t.Fatalf("expected value to remain untruncated, got %q", got)
	}
}

func TestFormatTableAlignsColumns(t *testing.T) {
	builder := NewTableBuilder([]string{"ID", "TITLE", "STATUS"}, 2)
	builder.AddRow("1", "Write docs", "NEW")
	builder.AddRow("12", "Tag\nrelease", "\x1b[32mDONE\x1b[0m")

	expected := "" +
		"ID  TITLE        STATUS\n" +
		"1   Write docs   NEW\n" +
		"12  Tag release  \x1b[32mDONE\x1b[0m\n"
	if got := builder.String(); got != expected {
		t.Fatalf("unexpected table:\n%q\nwant:\n%q", got, expected)
	}
	if builder.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", builder.Len())
	}
}
