// Package display renders pre-computed row properties into terminal lines.
// It has no knowledge of trees, bindings or widgets.
package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	cellGap   = " "
	indentStr = "  "
	ellipsis  = "…"
)

// RenderRow formats one row into a line of exactly width cells. The first
// cell carries the indentation and expansion glyph.
func RenderRow(p RowProps, width int) string {
	var b strings.Builder
	if p.HeaderWidth > 0 {
		b.WriteString(Fit(p.Header, p.HeaderWidth, lipgloss.Right))
		b.WriteString(cellGap)
	}
	for i, c := range p.Cells {
		if i > 0 {
			b.WriteString(cellGap)
		}
		text := c.Text
		if i == 0 {
			text = strings.Repeat(indentStr, max(p.Indent, 0)) + p.Glyph + " " + text
		}
		cell := Fit(text, c.Width, c.Align)
		if c.Editing {
			cell = editingStyle.Render(cell)
		} else {
			cell = c.Style.Render(cell)
		}
		b.WriteString(cell)
	}
	line := b.String()

	switch {
	case p.Cursor:
		return cursorStyle.Width(width).MaxWidth(width).Render(line)
	case p.Selected:
		return selectedStyle.Width(width).MaxWidth(width).Render(line)
	}
	return p.RowStyle.Width(width).MaxWidth(width).Render(line)
}

// RenderHeader formats the column captions. headerWidth reserves space for
// row headers; 0 means none.
func RenderHeader(captions []CellProps, headerWidth, width int) string {
	var b strings.Builder
	if headerWidth > 0 {
		b.WriteString(strings.Repeat(" ", headerWidth))
		b.WriteString(cellGap)
	}
	for i, c := range captions {
		if i > 0 {
			b.WriteString(cellGap)
		}
		b.WriteString(Fit(c.Text, c.Width, c.Align))
	}
	return headerStyle.Width(width).MaxWidth(width).Render(b.String())
}

// RenderSeparator returns a horizontal rule.
func RenderSeparator(width int) string {
	return separatorStyle.Render(strings.Repeat("─", max(width, 0)))
}

// Fit truncates s to w display cells, adding an ellipsis when it cuts, and
// pads it according to align.
func Fit(s string, w int, align lipgloss.Position) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, ellipsis)
	}
	gap := w - runewidth.StringWidth(s)
	switch {
	case gap <= 0:
		return s
	case align == lipgloss.Right:
		return strings.Repeat(" ", gap) + s
	case align == lipgloss.Center:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}
