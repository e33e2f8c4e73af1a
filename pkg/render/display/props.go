package display

import "github.com/charmbracelet/lipgloss"

// RowProps holds the pre-computed display properties of one tree row.
// Every decision about what a row shows is made before it gets here; this
// package only pads, truncates and applies the given styles.
type RowProps struct {
	Header      string // row header text, rendered only when HeaderWidth > 0
	HeaderWidth int

	Indent int    // nesting depth
	Glyph  string // expansion indicator

	Cells []CellProps

	RowStyle lipgloss.Style
	Selected bool
	Cursor   bool
}

// CellProps holds the display properties of one cell.
type CellProps struct {
	Text    string
	Width   int
	Align   lipgloss.Position
	Style   lipgloss.Style
	Editing bool
}
