// Package editor runs the lifecycle of in-place cell editors: activation,
// commit through a cancellable notification, cancellation and the reuse of
// editor controls across rows.
package editor

import (
	"fmt"

	"github.com/joshuapare/vtree/internal/columns"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

// Cell addresses one cell.
type Cell struct {
	Row *rowstore.Row
	Col *columns.Column
}

func (c Cell) String() string {
	name := ""
	if c.Col != nil {
		name = c.Col.Name
	}
	if c.Row == nil {
		return "<nil>." + name
	}
	return fmt.Sprintf("%v.%s", c.Row.Item(), name)
}

// CellEditor describes one editor type. Controls are host objects built by
// New and driven through the value functions.
type CellEditor struct {
	Name string
	Mode types.EditorDisplayMode
	// Retain keeps controls in the per-editor cache after an edit ends.
	// Without it, controls are disposed on deactivation.
	Retain bool

	New func() (any, error)
	// Initialize is the initialize-control notification. newControl is true
	// only when the control was just built.
	Initialize func(control any, cell Cell, newControl bool) error
	SetValue   func(control any, value any) error
	GetValue   func(control any) (any, error)
	Dispose    func(control any)
}

// List is a set of editors with unique names.
type List struct {
	byName map[string]*CellEditor
	order  []string
}

// NewList builds a list, failing on duplicate or incomplete editors.
func NewList(eds ...*CellEditor) (*List, error) {
	l := &List{byName: make(map[string]*CellEditor)}
	for _, e := range eds {
		if err := l.Add(e); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers e.
func (l *List) Add(e *CellEditor) error {
	if e == nil || e.Name == "" || e.New == nil || e.GetValue == nil || e.SetValue == nil {
		return &types.Error{Kind: types.ErrKindContract, Op: "editor.Add", Msg: "editor needs a name, New, GetValue and SetValue"}
	}
	if _, ok := l.byName[e.Name]; ok {
		return types.Wrap(types.ErrDuplicate, "editor.Add", fmt.Errorf("editor %q", e.Name))
	}
	l.byName[e.Name] = e
	l.order = append(l.order, e.Name)
	return nil
}

// ByName returns the named editor or nil.
func (l *List) ByName(name string) *CellEditor {
	if l == nil {
		return nil
	}
	return l.byName[name]
}

// Names lists editors in registration order.
func (l *List) Names() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.order...)
}
