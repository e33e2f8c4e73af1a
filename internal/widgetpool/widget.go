package widgetpool

import (
	"github.com/joshuapare/vtree/internal/columns"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

// Resetter is implemented by host visuals that keep their own per-binding
// state. Reset is called whenever the widget is released or rebound.
type Resetter interface {
	Reset()
}

// Disposer is implemented by host visuals that hold resources released on
// Pool.Dispose.
type Disposer interface {
	Dispose()
}

// Widget is a pooled visual element. The pool owns every widget; the row and
// column references of a bound widget are non-owning.
type Widget struct {
	kind   types.WidgetKind
	key    string
	id     int
	visual any // host object from the creator

	row   *rowstore.Row
	col   *columns.Column
	bound bool

	// Per-binding state. Cleared by reset.
	Text        string
	Value       any
	Style       string
	ReadOnly    bool
	Selected    bool
	Hover       bool
	Focused     bool
	Unavailable bool
	Err         error
	Depth       int
	Expanded    bool
	CanExpand   bool
	Loading     bool
	Control     any // editor control attached in Always mode
	Editing     bool
}

// Kind returns the widget kind.
func (w *Widget) Kind() types.WidgetKind { return w.kind }

// Key returns the binding key the widget was created for.
func (w *Widget) Key() string { return w.key }

// ID is unique per pool and stable across rebinding.
func (w *Widget) ID() int { return w.id }

// Visual returns the host object produced by the creator.
func (w *Widget) Visual() any { return w.visual }

// Row returns the bound row, nil for column headers or idle widgets.
func (w *Widget) Row() *rowstore.Row { return w.row }

// Column returns the bound column, nil for row-scoped or idle widgets.
func (w *Widget) Column() *columns.Column { return w.col }

// Bound reports whether the widget currently occupies a slot.
func (w *Widget) Bound() bool { return w.bound }

func (w *Widget) reset() {
	w.row = nil
	w.col = nil
	w.bound = false
	w.Text = ""
	w.Value = nil
	w.Style = ""
	w.ReadOnly = false
	w.Selected = false
	w.Hover = false
	w.Focused = false
	w.Unavailable = false
	w.Err = nil
	w.Depth = 0
	w.Expanded = false
	w.CanExpand = false
	w.Loading = false
	w.Control = nil
	w.Editing = false
	if r, ok := w.visual.(Resetter); ok {
		r.Reset()
	}
}
