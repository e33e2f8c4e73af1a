package display

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TestFit tests truncation and alignment
func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		align lipgloss.Position
		want  string
	}{
		{"pad left aligned", "ab", 4, lipgloss.Left, "ab  "},
		{"pad right aligned", "ab", 4, lipgloss.Right, "  ab"},
		{"center", "ab", 5, lipgloss.Center, " ab  "},
		{"exact", "abcd", 4, lipgloss.Left, "abcd"},
		{"truncate", "abcdef", 4, lipgloss.Left, "abc…"},
		{"zero width", "abc", 0, lipgloss.Left, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.in, tt.width, tt.align)
			if got != tt.want {
				t.Errorf("Fit(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if tt.width > 0 && runewidth.StringWidth(got) > tt.width {
				t.Errorf("Fit(%q, %d) is %d cells wide", tt.in, tt.width, runewidth.StringWidth(got))
			}
		})
	}
}

// TestRenderRow_IndentAndGlyph tests that the first cell carries the tree structure
func TestRenderRow_IndentAndGlyph(t *testing.T) {
	props := RowProps{
		Indent: 2,
		Glyph:  "▸",
		Cells: []CellProps{
			{Text: "child", Width: 14},
			{Text: "42", Width: 4, Align: lipgloss.Right},
		},
		RowStyle: lipgloss.NewStyle(),
	}

	result := RenderRow(props, 40)

	if !strings.Contains(result, "    ▸ child") {
		t.Errorf("expected indented glyph and name, got %q", result)
	}
	if !strings.Contains(result, "  42") {
		t.Errorf("expected right-aligned value, got %q", result)
	}
}

// TestRenderRow_Header tests row header rendering
func TestRenderRow_Header(t *testing.T) {
	props := RowProps{
		Header:      "7",
		HeaderWidth: 3,
		Cells:       []CellProps{{Text: "x", Width: 5}},
	}

	result := RenderRow(props, 20)
	if !strings.HasPrefix(result, "  7 ") {
		t.Errorf("expected right-aligned header, got %q", result)
	}
}

// TestRenderRow_Truncates tests that long cells never overflow their width
func TestRenderRow_Truncates(t *testing.T) {
	props := RowProps{
		Cells: []CellProps{{Text: strings.Repeat("x", 50), Width: 10}},
	}

	result := RenderRow(props, 30)
	if strings.Contains(result, strings.Repeat("x", 11)) {
		t.Errorf("cell text overflowed its column: %q", result)
	}
}

// TestRenderHeader tests column caption rendering
func TestRenderHeader(t *testing.T) {
	result := RenderHeader([]CellProps{
		{Text: "Name", Width: 8},
		{Text: "Size", Width: 6, Align: lipgloss.Right},
	}, 0, 40)

	if !strings.Contains(result, "Name") || !strings.Contains(result, "Size") {
		t.Errorf("header missing captions: %q", result)
	}
}

// TestRenderSeparator tests the separator width
func TestRenderSeparator(t *testing.T) {
	if got := runewidth.StringWidth(RenderSeparator(12)); got != 12 {
		t.Errorf("separator width = %d, want 12", got)
	}
}
