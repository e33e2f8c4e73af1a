// Package selection applies batched selection changes over the visible row
// order, giving the host one chance to veto each change before it happens.
package selection

import (
	"fmt"
	"time"

	"github.com/joshuapare/vtree/internal/hostcall"
	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

// Event is the selection-changing notification. Setting Cancel vetoes the
// whole change.
type Event struct {
	Start, End int // inclusive visible range, Start <= End
	Kind       types.SelectionChange
	// Count is the number of rows the change touches: the range length, or
	// the current selection size for Clear.
	Count  int
	Rows   []*rowstore.Row // rows in range; nil for Clear
	Cancel bool
}

// Options configures a Coordinator.
type Options struct {
	OnChanging func(*Event)
	// OnChanged runs after a change was applied.
	OnChanged func(kind types.SelectionChange, selected int)
	// SingleSelect rejects Add and ClearAndAdd ranges of more than one row.
	SingleSelect bool
	// WarnThreshold logs changes touching more rows. 0 disables.
	WarnThreshold int
}

// Coordinator owns the selection set of one tree.
type Coordinator struct {
	store    *rowstore.Store
	opts     Options
	selected map[*rowstore.Row]struct{}
	anchor   int
}

// New returns a coordinator over store with an empty selection.
func New(store *rowstore.Store, opts Options) *Coordinator {
	return &Coordinator{
		store:    store,
		opts:     opts,
		selected: make(map[*rowstore.Row]struct{}),
		anchor:   -1,
	}
}

// ApplyChange changes the selection for the visible rows start..end
// (inclusive, either direction). It fires one cancellable notification and
// reports false when the change was vetoed.
func (c *Coordinator) ApplyChange(start, end int, kind types.SelectionChange) (bool, error) {
	if start > end {
		start, end = end, start
	}

	var rows []*rowstore.Row
	count := len(c.selected)
	if kind != types.SelectClear {
		var err error
		rows, err = c.store.Range(start, end)
		if err != nil {
			return false, err
		}
		count = len(rows)
	}
	switch kind {
	case types.SelectClear, types.SelectRemove:
	case types.SelectAdd, types.SelectClearAndAdd:
		if c.opts.SingleSelect && (len(rows) > 1 || (kind == types.SelectAdd && len(c.selected) > 0)) {
			return false, &types.Error{Kind: types.ErrKindContract, Op: "select", Msg: "multi-row selection is disabled"}
		}
	default:
		return false, &types.Error{Kind: types.ErrKindContract, Op: "select", Msg: fmt.Sprintf("unknown change %s", kind)}
	}

	ev := &Event{Start: start, End: end, Kind: kind, Count: count, Rows: rows}
	if c.opts.OnChanging != nil {
		if err := hostcall.Call("selection-changing", func() error { c.opts.OnChanging(ev); return nil }); err != nil {
			ev.Cancel = true
		}
	}
	if ev.Cancel {
		logger.Debug("selection: change vetoed", "kind", kind.String(), "count", count)
		return false, nil
	}

	if c.opts.WarnThreshold > 0 && count > c.opts.WarnThreshold {
		logger.Warn("selection: large change", "kind", kind.String(), "count", count, "threshold", c.opts.WarnThreshold)
	}

	t0 := time.Now()
	switch kind {
	case types.SelectClear:
		c.clear()
	case types.SelectAdd:
		c.add(rows)
	case types.SelectRemove:
		for _, r := range rows {
			c.set(r, false)
		}
	case types.SelectClearAndAdd:
		c.clear()
		c.add(rows)
	}
	if kind != types.SelectClear {
		c.anchor = start
	}
	logger.Debug("selection: applied", "kind", kind.String(), "count", count, "selected", len(c.selected), "elapsed", time.Since(t0))

	if c.opts.OnChanged != nil {
		n := len(c.selected)
		_ = hostcall.Call("selection-changed", func() error { c.opts.OnChanged(kind, n); return nil })
	}
	return true, nil
}

func (c *Coordinator) add(rows []*rowstore.Row) {
	for _, r := range rows {
		c.set(r, true)
	}
}

func (c *Coordinator) set(r *rowstore.Row, on bool) {
	if on && !r.Live() {
		// Destroyed by the changing handler.
		return
	}
	c.store.SetSelected(r, on)
	if on {
		c.selected[r] = struct{}{}
	} else {
		delete(c.selected, r)
	}
}

func (c *Coordinator) clear() {
	for r := range c.selected {
		c.store.SetSelected(r, false)
	}
	clear(c.selected)
}

// Anchor returns the start of the last applied range, or -1.
func (c *Coordinator) Anchor() int { return c.anchor }

// Count returns the number of selected rows.
func (c *Coordinator) Count() int { return len(c.selected) }

// IsSelected reports whether row is selected.
func (c *Coordinator) IsSelected(row *rowstore.Row) bool {
	_, ok := c.selected[row]
	return ok
}

// Selected returns the selected rows in tree order, which is visible order
// for the visible ones.
func (c *Coordinator) Selected() []*rowstore.Row {
	if len(c.selected) == 0 {
		return nil
	}
	out := make([]*rowstore.Row, 0, len(c.selected))
	for r := range c.store.All() {
		if _, ok := c.selected[r]; ok {
			out = append(out, r)
			if len(out) == len(c.selected) {
				break
			}
		}
	}
	return out
}

// DropRows forgets destroyed rows.
func (c *Coordinator) DropRows(rows []*rowstore.Row) {
	for _, r := range rows {
		delete(c.selected, r)
	}
}
