// Package render turns a laid-out vtree.Frame into terminal lines. It maps
// widget state to display properties here and leaves padding and styling to
// the display package.
package render

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/vtree/pkg/render/display"
	"github.com/joshuapare/vtree/pkg/types"
	"github.com/joshuapare/vtree/pkg/vtree"
)

// Expansion glyphs.
const (
	GlyphCollapsed = "▸"
	GlyphExpanded  = "▾"
	GlyphLeaf      = " "
	GlyphLoading   = "…"
	GlyphFailed    = "!"
)

// Sort direction glyphs shown after the sort column's caption.
const (
	GlyphAscending  = "▴"
	GlyphDescending = "▾"
)

// SortGlyph returns the header indicator for d.
func SortGlyph(d types.SortDirection) string {
	if d == types.SortDescending {
		return GlyphDescending
	}
	return GlyphAscending
}

// Viewer is implemented by editor controls that can draw themselves in a
// cell, such as a bubbles textinput.
type Viewer interface {
	View() string
}

// Options controls Lines.
type Options struct {
	Width  int
	Cursor *vtree.Row    // highlighted row, may be nil
	Sort   *vtree.Column // sort column, may be nil
	Theme  Theme
}

// Glyph returns the expansion indicator of an expansion widget.
func Glyph(w *vtree.Widget) string {
	switch {
	case w == nil:
		return GlyphLeaf
	case w.Loading:
		return GlyphLoading
	case w.Unavailable:
		return GlyphFailed
	case !w.CanExpand:
		return GlyphLeaf
	case w.Expanded:
		return GlyphExpanded
	}
	return GlyphCollapsed
}

// RowProps computes the display properties of one frame row.
func RowProps(fr vtree.FrameRow, cols []*vtree.Column, index int, cursor bool, theme Theme) display.RowProps {
	p := display.RowProps{
		Glyph:    Glyph(fr.Expansion),
		Cursor:   cursor,
		RowStyle: theme.Row,
		Cells:    make([]display.CellProps, 0, len(fr.Cells)),
	}
	if index%2 == 1 {
		p.RowStyle = theme.RowAlt
	}
	if fr.Widget != nil {
		p.Indent = fr.Widget.Depth
		p.Selected = fr.Widget.Selected
		if s, ok := theme.class(fr.Widget.Style); ok {
			p.RowStyle = s
		}
	}
	if fr.Header != nil {
		p.Header = fr.Header.Text
		if p.Header == "" {
			p.Header = strconv.Itoa(index + 1)
		}
		p.HeaderWidth = 4
	}

	for i, w := range fr.Cells {
		c := display.CellProps{Text: w.Text, Width: cols[i].Width, Align: Align(cols[i].Align)}
		switch {
		case w.Editing:
			c.Editing = true
			if v, ok := w.Control.(Viewer); ok {
				c.Text = v.View()
			}
		case w.Control != nil:
			if v, ok := w.Control.(Viewer); ok {
				c.Text = v.View()
			}
		case w.Unavailable:
			c.Style = theme.Unavailable
		default:
			if s, ok := theme.class(w.Style); ok {
				c.Style = s
			}
		}
		if i == 0 && fr.Expansion != nil && fr.Expansion.Loading {
			c.Style = theme.Loading
		}
		p.Cells = append(p.Cells, c)
	}
	return p
}

// Align maps a column alignment to a lipgloss position.
func Align(a vtree.Align) lipgloss.Position {
	switch a {
	case vtree.AlignRight:
		return lipgloss.Right
	case vtree.AlignCenter:
		return lipgloss.Center
	}
	return lipgloss.Left
}

// Lines renders frame as column headers, a separator and one line per row.
func Lines(frame *vtree.Frame, opts Options) []string {
	if opts.Theme.Classes == nil {
		opts.Theme = DefaultTheme()
	}
	lines := make([]string, 0, len(frame.Rows)+2)

	headerWidth := 0
	if len(frame.Rows) > 0 && frame.Rows[0].Header != nil {
		headerWidth = 4
	}
	if len(frame.ColumnHeaders) > 0 {
		caps := make([]display.CellProps, len(frame.ColumnHeaders))
		for i, w := range frame.ColumnHeaders {
			caps[i] = display.CellProps{
				Text:  w.Text,
				Width: frame.Columns[i].Width,
				Align: Align(frame.Columns[i].Align),
			}
			if frame.Columns[i] == opts.Sort {
				caps[i].Text += " " + SortGlyph(opts.Sort.SortDirection)
			}
		}
		// The first column also holds the glyph column.
		if len(caps) > 0 {
			caps[0].Text = "  " + caps[0].Text
		}
		lines = append(lines,
			display.RenderHeader(caps, headerWidth, opts.Width),
			display.RenderSeparator(opts.Width))
	}

	for _, fr := range frame.Rows {
		idx := fr.Row.VisibleIndex()
		p := RowProps(fr, frame.Columns, idx, fr.Row == opts.Cursor, opts.Theme)
		lines = append(lines, display.RenderRow(p, opts.Width))
	}
	return lines
}
