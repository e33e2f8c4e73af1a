// Package columns holds the ordered, typed column collection of a tree.
package columns

import (
	"fmt"
	"slices"

	"github.com/mattn/go-runewidth"

	"github.com/joshuapare/vtree/pkg/types"
)

// Align is the horizontal alignment of cell text.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Column describes one data column.
type Column struct {
	Name    string // unique key
	Caption string // header text; Name when empty
	Field   string // data field the binding reads for this column
	Editor  string // registered editor name, "" for read-only

	Width    int
	MinWidth int
	// MaxAutoSizeWidth caps auto-sizing. Zero means no limit.
	MaxAutoSizeWidth int
	AutoSize         types.AutoSizePolicy
	Align            Align
	Hidden           bool

	// Pinned columns are laid out before the scrolling ones.
	Pinned bool
	// Fixed columns cannot be moved by the user.
	Fixed bool

	// Sortable lets the user make this the sort column.
	Sortable      bool
	SortDirection types.SortDirection
}

// Movable reports whether the user may reorder the column. Pinned columns
// stay in place.
func (c *Column) Movable() bool { return !c.Fixed && !c.Pinned }

// Title returns the header caption.
func (c *Column) Title() string {
	if c.Caption != "" {
		return c.Caption
	}
	return c.Name
}

// List is an ordered set of columns with unique names.
type List struct {
	cols []*Column
	sort *Column
}

// NewList builds a list from cols, failing on duplicates.
func NewList(cols ...*Column) (*List, error) {
	l := &List{}
	for _, c := range cols {
		if err := l.Add(c); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add appends c.
func (l *List) Add(c *Column) error {
	if c == nil || c.Name == "" {
		return &types.Error{Kind: types.ErrKindContract, Op: "columns.Add", Msg: "column needs a name"}
	}
	if l.ByName(c.Name) != nil {
		return types.Wrap(types.ErrDuplicate, "columns.Add", fmt.Errorf("column %q", c.Name))
	}
	if c.MinWidth <= 0 {
		c.MinWidth = 1
	}
	if c.Width < c.MinWidth {
		c.Width = max(c.MinWidth, runewidth.StringWidth(c.Title()))
	}
	l.cols = append(l.cols, c)
	return nil
}

// Remove deletes the named column and reports whether it existed.
func (l *List) Remove(name string) bool {
	i := l.IndexOf(name)
	if i < 0 {
		return false
	}
	if l.sort == l.cols[i] {
		l.sort = nil
	}
	l.cols = slices.Delete(l.cols, i, i+1)
	return true
}

// Move places the named column at position to.
func (l *List) Move(name string, to int) error {
	i := l.IndexOf(name)
	if i < 0 {
		return types.Wrap(types.ErrNotFound, "columns.Move", fmt.Errorf("column %q", name))
	}
	to = min(max(to, 0), len(l.cols)-1)
	c := l.cols[i]
	l.cols = slices.Delete(l.cols, i, i+1)
	l.cols = slices.Insert(l.cols, to, c)
	return nil
}

// UserMove is Move on behalf of the user. Columns that are not Movable
// are rejected.
func (l *List) UserMove(name string, to int) error {
	c := l.ByName(name)
	if c == nil {
		return types.Wrap(types.ErrNotFound, "columns.UserMove", fmt.Errorf("column %q", name))
	}
	if !c.Movable() {
		return &types.Error{Kind: types.ErrKindState, Op: "columns.UserMove", Msg: fmt.Sprintf("column %q cannot be moved", name)}
	}
	return l.Move(name, to)
}

// SortColumn returns the column children are ordered by, or nil.
func (l *List) SortColumn() *Column { return l.sort }

// SetSort makes the named column the sort column with direction dir. An
// empty name clears sorting.
func (l *List) SetSort(name string, dir types.SortDirection) error {
	if name == "" {
		l.sort = nil
		return nil
	}
	c := l.ByName(name)
	if c == nil {
		return types.Wrap(types.ErrNotFound, "columns.SetSort", fmt.Errorf("column %q", name))
	}
	if !c.Sortable {
		return &types.Error{Kind: types.ErrKindState, Op: "columns.SetSort", Msg: fmt.Sprintf("column %q is not sortable", name)}
	}
	c.SortDirection = dir
	l.sort = c
	return nil
}

// ToggleSort handles a click on the named column's header: the current
// sort column flips direction, any other sortable column becomes the sort
// column in its own direction. It reports whether the order changed.
func (l *List) ToggleSort(name string) (bool, error) {
	c := l.ByName(name)
	if c == nil {
		return false, types.Wrap(types.ErrNotFound, "columns.ToggleSort", fmt.Errorf("column %q", name))
	}
	if !c.Sortable || c.Hidden {
		return false, nil
	}
	if l.sort == c {
		c.SortDirection = c.SortDirection.Reverse()
	} else {
		l.sort = c
	}
	return true, nil
}

// ByName returns the named column or nil.
func (l *List) ByName(name string) *Column {
	if i := l.IndexOf(name); i >= 0 {
		return l.cols[i]
	}
	return nil
}

// IndexOf returns the position of the named column, or -1.
func (l *List) IndexOf(name string) int {
	return slices.IndexFunc(l.cols, func(c *Column) bool { return c.Name == name })
}

// At returns the column at i or nil.
func (l *List) At(i int) *Column {
	if i < 0 || i >= len(l.cols) {
		return nil
	}
	return l.cols[i]
}

// Len returns the number of columns.
func (l *List) Len() int { return len(l.cols) }

// All returns every column in order. The slice must not be modified.
func (l *List) All() []*Column { return l.cols }

// Visible returns the columns that are not hidden, pinned ones first.
func (l *List) Visible() []*Column {
	out := make([]*Column, 0, len(l.cols))
	out = append(out, l.Pinned()...)
	return append(out, l.Scrollable()...)
}

// Pinned returns the visible pinned columns.
func (l *List) Pinned() []*Column {
	var out []*Column
	for _, c := range l.cols {
		if !c.Hidden && c.Pinned {
			out = append(out, c)
		}
	}
	return out
}

// Scrollable returns the visible columns that are not pinned.
func (l *List) Scrollable() []*Column {
	var out []*Column
	for _, c := range l.cols {
		if !c.Hidden && !c.Pinned {
			out = append(out, c)
		}
	}
	return out
}

// Fit applies c's auto-size policy to the display width of texts and
// returns the new width.
func (c *Column) Fit(texts ...string) int {
	if c.AutoSize == types.AutoSizeManual {
		return c.Width
	}
	want := max(c.MinWidth, runewidth.StringWidth(c.Title()))
	for _, t := range texts {
		want = max(want, runewidth.StringWidth(t))
	}
	if c.MaxAutoSizeWidth > 0 {
		want = min(want, max(c.MaxAutoSizeWidth, c.MinWidth))
	}
	switch c.AutoSize {
	case types.AutoSizeIncrease:
		c.Width = max(c.Width, want)
	case types.AutoSizeFit:
		c.Width = want
	}
	return c.Width
}
