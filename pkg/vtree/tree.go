package vtree

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/joshuapare/vtree/internal/childload"
	"github.com/joshuapare/vtree/internal/columns"
	"github.com/joshuapare/vtree/internal/dragdrop"
	"github.com/joshuapare/vtree/internal/editor"
	"github.com/joshuapare/vtree/internal/hostcall"
	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/internal/selection"
	"github.com/joshuapare/vtree/internal/widgetpool"
	"github.com/joshuapare/vtree/pkg/types"
)

// Tree is a virtualized tree grid over one item graph.
type Tree struct {
	opts  Options
	graph types.ItemGraph

	store   *rowstore.Store
	loader  *childload.Engine
	cols    *columns.List
	pool    *widgetpool.Pool
	editors *editor.Manager
	drops   *dragdrop.Resolver
	sel     *selection.Coordinator

	disposed bool
}

// New builds a tree rooted at root and loads the root's children.
func New(ctx context.Context, graph types.ItemGraph, root types.Item, opts Options) (*Tree, error) {
	if graph == nil {
		return nil, &types.Error{Kind: types.ErrKindContract, Op: "vtree.New", Msg: "nil item graph"}
	}
	if opts.Binding == nil && opts.Hooks.GetBinding == nil {
		return nil, &types.Error{Kind: types.ErrKindContract, Op: "vtree.New", Msg: "no binding"}
	}
	if opts.Key == nil {
		opts.Key = func(it types.Item) string { return fmt.Sprint(it) }
	}

	t := &Tree{opts: opts, graph: graph}

	storeOpts := rowstore.Options{ShowRoot: opts.ShowRoot, ReleaseOnCollapse: opts.ReleaseOnCollapse}
	if h, ok := graph.(types.ChildHinter); ok {
		storeOpts.HasChildren = h.HasChildren
	}
	store, err := rowstore.New(root, storeOpts)
	if err != nil {
		return nil, err
	}
	t.store = store

	t.cols, err = columns.NewList(opts.Columns...)
	if err != nil {
		return nil, err
	}
	list, err := editor.NewList(opts.Editors...)
	if err != nil {
		return nil, err
	}

	t.loader = childload.New(store, graph, childload.Options{
		DefaultPolicy: opts.DefaultChildPolicy,
		PolicyHook:    opts.Hooks.ChildPolicy,
		BindingPolicy: func(r *Row) (types.ChildPolicy, bool) {
			if b := t.binding(r); b != nil && b.ChildPolicy != nil {
				return *b.ChildPolicy, true
			}
			return 0, false
		},
		OnLoaded: opts.Hooks.ChildrenLoaded,
		Order:    t.order,
	})

	src := &source{t: t}
	t.editors = editor.NewManager(editor.Options{
		Editors:    list,
		Source:     src,
		OnChanging: opts.Hooks.CellValueChanging,
	})
	t.pool = widgetpool.New(src, widgetpool.Options{
		Placeholder: opts.Placeholder,
		OnRelease: func(w *Widget) {
			if w.Kind() == types.WidgetCell {
				t.editors.Hide(Cell{Row: w.Row(), Col: w.Column()})
			}
		},
	})
	for kind, fn := range opts.Creators {
		t.pool.Register(kind, fn)
	}
	if opts.Prewarm > 0 && opts.Binding != nil {
		if err := t.prewarm(opts.Prewarm); err != nil {
			return nil, err
		}
	}

	t.drops = dragdrop.New(store, dragdrop.Options{
		Defaults: func(r *Row) types.DropLocation {
			if b := t.binding(r); b != nil && b.DropLocations != types.DropNone {
				return b.DropLocations
			}
			return types.DropOnRow | types.DropAboveRow | types.DropBelowRow
		},
		Formats: func(r *Row) []string {
			if b := t.binding(r); b != nil {
				return b.Formats
			}
			return nil
		},
		AllowEmptySpace: opts.AllowEmptySpaceDrop,
		Override:        opts.Hooks.AllowedDropLocations,
		Effect:          opts.Hooks.DropEffect,
		OnDrop:          opts.Hooks.RowDrop,
		AllowDrag: func(r *Row) (bool, bool) {
			if opts.Hooks.AllowRowDrag != nil {
				if allow, ok := opts.Hooks.AllowRowDrag(r); ok {
					return allow, true
				}
			}
			if b := t.binding(r); b != nil {
				return b.AllowDrag, true
			}
			return false, false
		},
		EdgeBand: opts.DropEdgeBand,
	})

	t.sel = selection.New(store, selection.Options{
		OnChanging:    opts.Hooks.SelectionChanging,
		OnChanged:     opts.Hooks.SelectionChanged,
		SingleSelect:  opts.SingleSelect,
		WarnThreshold: opts.SelectionWarnThreshold,
	})

	store.OnRemoved(func(rows []*Row) {
		t.pool.ReleaseRows(rows)
		t.editors.DropRows(rows)
		t.sel.DropRows(rows)
	})

	if err := t.loader.EnsureLoaded(ctx, store.Root()); err != nil {
		return nil, err
	}
	logger.Debug("vtree: created", "root", root, "top_level", store.Root().ChildCount())
	return t, nil
}

func (t *Tree) prewarm(n int) error {
	key := t.opts.Binding.Key
	perRow := map[types.WidgetKind]int{
		types.WidgetRow:       n,
		types.WidgetExpansion: n,
		types.WidgetCell:      n * len(t.cols.Visible()),
	}
	if t.opts.RowHeaders {
		perRow[types.WidgetHeader] = n
	}
	for kind, count := range perRow {
		if err := t.pool.Prewarm(kind, key, count); err != nil {
			return err
		}
	}
	return nil
}

// binding resolves the get-binding notification for row.
func (t *Tree) binding(r *Row) *Binding {
	if t.opts.Hooks.GetBinding != nil && r != nil {
		b, err := hostcall.Value("get-binding", func() (*Binding, error) {
			return t.opts.Hooks.GetBinding(r), nil
		})
		if err == nil && b != nil {
			return b
		}
	}
	return t.opts.Binding
}

func (t *Tree) live(op string) error {
	if t.disposed {
		return types.Wrap(types.ErrDisposed, op, nil)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Rows
// -----------------------------------------------------------------------------

// Root returns the root row.
func (t *Tree) Root() *Row { return t.store.Root() }

// Columns returns the column list.
func (t *Tree) Columns() *columns.List { return t.cols }

// RowFor returns the live row of item.
func (t *Tree) RowFor(item types.Item) (*Row, bool) { return t.store.RowFor(item) }

// RowAt returns the visible row at index, or nil.
func (t *Tree) RowAt(index int) *Row { return t.store.RowAt(index) }

// VisibleCount returns the number of visible rows.
func (t *Tree) VisibleCount() int { return t.store.VisibleCount() }

// Flatten returns the visible rows in order.
func (t *Tree) Flatten() []*Row { return t.store.Flatten() }

// Visible iterates the visible rows.
func (t *Tree) Visible() iter.Seq[*Row] { return t.store.Visible() }

// Policy returns the resolved child policy of row.
func (t *Tree) Policy(row *Row) types.ChildPolicy { return t.loader.Policy(row) }

// Expand loads row's children if needed and expands it. It reports false
// when there is nothing to show.
func (t *Tree) Expand(ctx context.Context, row *Row) (bool, error) {
	if err := t.live("expand"); err != nil {
		return false, err
	}
	return t.loader.Expand(ctx, row)
}

// Collapse collapses row.
func (t *Tree) Collapse(row *Row) error {
	if err := t.live("collapse"); err != nil {
		return err
	}
	return t.loader.Collapse(row)
}

// Toggle flips the expansion of row.
func (t *Tree) Toggle(ctx context.Context, row *Row) (bool, error) {
	if err := t.live("toggle"); err != nil {
		return false, err
	}
	return t.loader.Toggle(ctx, row)
}

// ExpandAll expands row and its descendants down to maxDepth levels
// (negative for all).
func (t *Tree) ExpandAll(ctx context.Context, row *Row, maxDepth int) error {
	if err := t.live("expand all"); err != nil {
		return err
	}
	return t.loader.ExpandAll(ctx, row, maxDepth)
}

// Reload fetches row's children again.
func (t *Tree) Reload(ctx context.Context, row *Row) error {
	if err := t.live("reload"); err != nil {
		return err
	}
	return t.loader.Reload(ctx, row)
}

// UpdateChildren re-reads row's children when reload is set and otherwise
// reapplies the sort order to the loaded ones. Recursive extends it to every
// loaded descendant.
func (t *Tree) UpdateChildren(ctx context.Context, row *Row, reload, recursive bool) error {
	if err := t.live("update children"); err != nil {
		return err
	}
	return t.loader.UpdateChildren(ctx, row, reload, recursive)
}

// CollapseChildren collapses the children of row, and their descendants too
// when recursive is set. Row itself stays expanded.
func (t *Tree) CollapseChildren(row *Row, recursive bool) error {
	if err := t.live("collapse children"); err != nil {
		return err
	}
	return t.loader.CollapseChildren(row, recursive)
}

// SortColumn returns the column children are ordered by, nil when the graph
// order is kept.
func (t *Tree) SortColumn() *Column { return t.cols.SortColumn() }

// SetSort makes name the sort column with direction dir and reorders every
// loaded row. An empty name clears sorting and reloads to restore the graph
// order.
func (t *Tree) SetSort(ctx context.Context, name string, dir types.SortDirection) error {
	if err := t.live("set sort"); err != nil {
		return err
	}
	if err := t.cols.SetSort(name, dir); err != nil {
		return err
	}
	return t.loader.UpdateChildren(ctx, t.store.Root(), name == "", true)
}

// ToggleSort is a header click: it reverses the direction when name is
// already the sort column and otherwise sorts by it ascending. It reports
// false when the column cannot sort.
func (t *Tree) ToggleSort(ctx context.Context, name string) (bool, error) {
	if err := t.live("toggle sort"); err != nil {
		return false, err
	}
	ok, err := t.cols.ToggleSort(name)
	if err != nil || !ok {
		return ok, err
	}
	return true, t.loader.UpdateChildren(ctx, t.store.Root(), false, true)
}

// order sorts the children of parent by the sort column through the parent
// binding's Compare.
func (t *Tree) order(parent *Row, items []types.Item) []types.Item {
	col := t.cols.SortColumn()
	if col == nil {
		return items
	}
	b := t.binding(parent)
	if b == nil || b.Compare == nil {
		return items
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(x, y types.Item) int {
		c := b.Compare(x, y, col)
		if col.SortDirection == types.SortDescending {
			return -c
		}
		return c
	})
	return out
}

// EnsureVisible expands the ancestors of item, found through the graph's
// get-parent, and returns its row.
func (t *Tree) EnsureVisible(ctx context.Context, item types.Item) (*Row, error) {
	if err := t.live("ensure visible"); err != nil {
		return nil, err
	}
	if r, ok := t.store.RowFor(item); ok && t.store.IsVisible(r) {
		return r, nil
	}

	type parentOf struct {
		item types.Item
		ok   bool
	}
	var chain []types.Item
	seen := make(map[types.Item]struct{})
	root := t.store.Root().Item()
	for it := item; it != root; {
		if _, loop := seen[it]; loop {
			return nil, types.Wrap(types.ErrAdapter, "ensure visible", fmt.Errorf("parent cycle at %v", it))
		}
		seen[it] = struct{}{}
		chain = append(chain, it)
		p, err := hostcall.Value("get-parent", func() (parentOf, error) {
			parent, ok := t.graph.Parent(it)
			return parentOf{parent, ok}, nil
		})
		if err != nil {
			return nil, err
		}
		if !p.ok {
			return nil, types.Wrap(types.ErrNotFound, "ensure visible", fmt.Errorf("item %v is not under the root", item))
		}
		it = p.item
	}

	r := t.store.Root()
	if _, err := t.loader.Expand(ctx, r); err != nil {
		return nil, err
	}
	for i := len(chain) - 1; i >= 0; i-- {
		next, ok := t.store.RowFor(chain[i])
		if !ok {
			return nil, types.Wrap(types.ErrNotFound, "ensure visible", fmt.Errorf("item %v not among the children of %v", chain[i], r.Item()))
		}
		r = next
		if i > 0 {
			if _, err := t.loader.Expand(ctx, r); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// InsertItem tells the tree that item was added under parent at position at.
func (t *Tree) InsertItem(parent types.Item, at int, item types.Item) (*Row, error) {
	if err := t.live("insert"); err != nil {
		return nil, err
	}
	p, ok := t.store.RowFor(parent)
	if !ok {
		// Parent not materialized; the row appears when it loads.
		return nil, nil
	}
	return t.store.InsertChild(p, at, item)
}

// RemoveItem tells the tree that item was removed from the graph.
func (t *Tree) RemoveItem(item types.Item) error {
	if err := t.live("remove"); err != nil {
		return err
	}
	if _, ok := t.store.RowFor(item); !ok {
		return nil
	}
	return t.store.Remove(item)
}

// -----------------------------------------------------------------------------
// Selection
// -----------------------------------------------------------------------------

// Select applies a selection change over visible rows start..end.
func (t *Tree) Select(start, end int, kind types.SelectionChange) (bool, error) {
	if err := t.live("select"); err != nil {
		return false, err
	}
	return t.sel.ApplyChange(start, end, kind)
}

// Selection returns the selected rows in tree order.
func (t *Tree) Selection() []*Row { return t.sel.Selected() }

// SelectedCount returns the number of selected rows.
func (t *Tree) SelectedCount() int { return t.sel.Count() }

// SelectionAnchor returns the start of the last selection range, or -1.
func (t *Tree) SelectionAnchor() int { return t.sel.Anchor() }

// -----------------------------------------------------------------------------
// Editing
// -----------------------------------------------------------------------------

// BeginEdit activates the editor of the cell.
func (t *Tree) BeginEdit(row *Row, col *Column, trigger types.EditTrigger) (*EditSession, error) {
	if err := t.live("begin edit"); err != nil {
		return nil, err
	}
	if err := t.editable(row, col); err != nil {
		return nil, err
	}
	return t.editors.Activate(Cell{Row: row, Col: col}, trigger)
}

// CommitEdit commits the active edit. It reports false when the
// set-cell-value notification cancelled it.
func (t *Tree) CommitEdit(trigger types.EditTrigger) (bool, error) {
	if err := t.live("commit edit"); err != nil {
		return false, err
	}
	return t.editors.Commit(trigger)
}

// CancelEdit abandons the active edit.
func (t *Tree) CancelEdit() error {
	if err := t.live("cancel edit"); err != nil {
		return err
	}
	return t.editors.Cancel()
}

// HandleEdit routes a user trigger to the cell's edit lifecycle.
func (t *Tree) HandleEdit(row *Row, col *Column, trigger types.EditTrigger) (bool, error) {
	if err := t.live("handle edit"); err != nil {
		return false, err
	}
	cell := Cell{Row: row, Col: col}
	if a := t.editors.Active(); starts(trigger) && (a == nil || a.Cell() != cell) {
		if err := t.editable(row, col); err != nil {
			return a != nil, err
		}
	}
	return t.editors.Handle(cell, trigger)
}

// starts reports whether trigger opens an editor on an idle cell.
func starts(trigger types.EditTrigger) bool {
	switch trigger {
	case types.TriggerAPI, types.TriggerClick, types.TriggerEnter:
		return true
	}
	return false
}

// ActiveEdit returns the current edit session or nil.
func (t *Tree) ActiveEdit() *EditSession { return t.editors.Active() }

// EditState returns the edit state of a cell.
func (t *Tree) EditState(row *Row, col *Column) types.EditState {
	return t.editors.State(Cell{Row: row, Col: col})
}

// -----------------------------------------------------------------------------
// Drag and drop
// -----------------------------------------------------------------------------

// CanDrag reports whether row may be dragged.
func (t *Tree) CanDrag(row *Row) bool { return t.drops.CanDrag(row) }

// ResolveDrop computes where a payload would land. row is nil over the
// empty space below the last row.
func (t *Tree) ResolveDrop(row *Row, g types.Geometry, p types.Payload) DropResolution {
	return t.drops.Resolve(row, g, p)
}

// Drop resolves and, when accepted, delivers the row-drop notification.
func (t *Tree) Drop(row *Row, g types.Geometry, p types.Payload) (DropResolution, bool) {
	if t.disposed {
		return DropResolution{Row: row}, false
	}
	return t.drops.Drop(row, g, p)
}

// -----------------------------------------------------------------------------
// Context
// -----------------------------------------------------------------------------

// ContextMenu returns the host's context menu for row, or nil.
func (t *Tree) ContextMenu(row *Row) any {
	if t.opts.Hooks.ContextMenu == nil {
		return nil
	}
	m, err := hostcall.Value("get-context-menu", func() (any, error) {
		return t.opts.Hooks.ContextMenu(row), nil
	})
	if err != nil {
		return nil
	}
	return m
}

// ColumnInContext reports whether col takes part in context actions such as
// copy.
func (t *Tree) ColumnInContext(col *Column) bool {
	if t.opts.Hooks.ColumnInContext == nil {
		return true
	}
	in, err := hostcall.Value("get-column-in-context", func() (bool, error) {
		return t.opts.Hooks.ColumnInContext(col), nil
	})
	return err == nil && in
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Stats summarizes resource use.
type Stats struct {
	Rows          int // materialized rows
	Visible       int
	Selected      int
	Pool          PoolStats
	ControlsBuilt int
}

// Stats returns current counters.
func (t *Tree) Stats() Stats {
	return Stats{
		Rows:          t.store.Len(),
		Visible:       t.store.VisibleCount(),
		Selected:      t.sel.Count(),
		Pool:          t.pool.Stats(),
		ControlsBuilt: t.editors.ControlsBuilt(),
	}
}

// Dispose tears down the widget pool and editor controls. The tree cannot
// be used afterwards.
func (t *Tree) Dispose() {
	if t.disposed {
		return
	}
	t.editors.Dispose()
	t.pool.Dispose()
	t.disposed = true
	logger.Debug("vtree: disposed")
}
