package rowstore

import "github.com/joshuapare/vtree/pkg/types"

// Row is the materialized, display-facing node for one item. Rows are owned
// by their Store; fields change only through Store methods.
type Row struct {
	store    *Store // nil once destroyed
	item     types.Item
	parent   *Row
	children []*Row
	pos      int // index within parent.children
	depth    int

	override  *types.ChildPolicy
	loadState types.LoadState
	loadErr   error
	expanded  bool
	selected  bool
	canExpand bool

	index int // position in store.flat; validated against the slice on read
}

// Item returns the backing item.
func (r *Row) Item() types.Item { return r.item }

// Parent returns the parent row, nil for the root.
func (r *Row) Parent() *Row { return r.parent }

// Children returns the loaded child rows. The slice must not be modified.
func (r *Row) Children() []*Row { return r.children }

// ChildCount returns the number of loaded children.
func (r *Row) ChildCount() int { return len(r.children) }

// Depth is the indentation level. Top-level rows have depth 0.
func (r *Row) Depth() int { return r.depth }

// IsExpanded reports whether the row's children are shown.
func (r *Row) IsExpanded() bool { return r.expanded }

// IsSelected reports whether the row is part of the selection.
func (r *Row) IsSelected() bool { return r.selected }

// LoadState reports child materialization progress.
func (r *Row) LoadState() types.LoadState { return r.loadState }

// LoadErr is the adapter error from the last failed load, if any.
func (r *Row) LoadErr() error { return r.loadErr }

// CanExpand reports whether the row shows an expansion affordance.
func (r *Row) CanExpand() bool { return r.canExpand }

// Live reports whether the row still belongs to its store.
func (r *Row) Live() bool { return r.store != nil }

// IsRoot reports whether r is the store's root row.
func (r *Row) IsRoot() bool { return r.parent == nil }

// IsDescendantOf reports whether ancestor is a parent, grandparent and so on
// of r. A row is not its own descendant.
func (r *Row) IsDescendantOf(ancestor *Row) bool {
	if ancestor == nil {
		return false
	}
	for p := r.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// PolicyOverride returns the per-row child policy override, if set.
func (r *Row) PolicyOverride() (types.ChildPolicy, bool) {
	if r.override == nil {
		return types.PolicyNormal, false
	}
	return *r.override, true
}

// SetPolicyOverride pins the child policy for this row.
func (r *Row) SetPolicyOverride(p types.ChildPolicy) { r.override = &p }

// ClearPolicyOverride removes the per-row override.
func (r *Row) ClearPolicyOverride() { r.override = nil }

// VisibleIndex returns the row's position in the visible order, recomputing
// the flattening if a mutation invalidated it. Rows that are not visible
// return -1.
func (r *Row) VisibleIndex() int {
	if r.store == nil {
		return -1
	}
	r.store.ensure()
	return r.store.indexOf(r)
}
