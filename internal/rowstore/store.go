// Package rowstore maintains the tree of materialized rows and its
// flattened visible order.
//
// Visible indices are recomputed lazily: a mutation only records the first
// position whose index may have changed, and the next read rebuilds the
// order from there. Bulk operations such as expand-all therefore cost one
// rebuild instead of one per row.
package rowstore

import (
	"fmt"
	"iter"
	"time"

	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/pkg/types"
)

// Options configures a Store.
type Options struct {
	// ShowRoot makes the root row itself visible at depth 0. Otherwise the
	// root is hidden, always expanded, and its children are top-level.
	ShowRoot bool
	// ReleaseOnCollapse destroys descendant rows when a row collapses and
	// resets it to Unloaded.
	ReleaseOnCollapse bool
	// HasChildren seeds the expansion affordance of new rows before they load.
	// Nil means every new row may have children.
	HasChildren func(types.Item) bool
}

// Store owns every row of one tree.
type Store struct {
	opts   Options
	root   *Row
	byItem map[types.Item]*Row

	flat      []*Row
	validUpTo int  // flat[:validUpTo] matches the current visible order
	dirty     bool // flat[validUpTo:] must be rebuilt

	removed []func([]*Row)
}

// New creates a store rooted at root.
func New(root types.Item, opts Options) (*Store, error) {
	if root == nil {
		return nil, types.Wrap(types.ErrNilItem, "rowstore.New", nil)
	}
	s := &Store{
		opts:   opts,
		byItem: make(map[types.Item]*Row),
		dirty:  true,
	}
	s.root = s.newRow(root, nil, 0)
	if !opts.ShowRoot {
		s.root.depth = -1
		s.root.expanded = true
	}
	return s, nil
}

func (s *Store) newRow(item types.Item, parent *Row, pos int) *Row {
	r := &Row{
		store:     s,
		item:      item,
		parent:    parent,
		pos:       pos,
		canExpand: true,
		index:     -1,
	}
	if parent != nil {
		r.depth = parent.depth + 1
	}
	if s.opts.HasChildren != nil {
		r.canExpand = s.opts.HasChildren(item)
	}
	s.byItem[item] = r
	return r
}

// Root returns the root row.
func (s *Store) Root() *Row { return s.root }

// ShowRoot reports whether the root row is part of the visible order.
func (s *Store) ShowRoot() bool { return s.opts.ShowRoot }

// ReleaseOnCollapse reports whether collapse destroys descendants.
func (s *Store) ReleaseOnCollapse() bool { return s.opts.ReleaseOnCollapse }

// RowFor returns the live row for item.
func (s *Store) RowFor(item types.Item) (*Row, bool) {
	r, ok := s.byItem[item]
	return r, ok
}

// Len returns the number of materialized rows, visible or not.
func (s *Store) Len() int { return len(s.byItem) }

// OnRemoved registers a listener called with rows destroyed by a mutation.
func (s *Store) OnRemoved(fn func([]*Row)) {
	s.removed = append(s.removed, fn)
}

// -----------------------------------------------------------------------------
// Visibility
// -----------------------------------------------------------------------------

// IsVisible reports whether every ancestor of r is expanded.
func (s *Store) IsVisible(r *Row) bool {
	if r == nil || r.store != s {
		return false
	}
	if r == s.root {
		return s.opts.ShowRoot
	}
	for a := r.parent; a != nil; a = a.parent {
		if !a.expanded {
			return false
		}
	}
	return true
}

// invalidate records that visible positions after r may have changed.
// inclusive also invalidates r's own position (used when r is removed).
func (s *Store) invalidate(r *Row, inclusive bool) {
	if r == s.root && !s.opts.ShowRoot {
		s.dirty = true
		s.validUpTo = 0
		return
	}
	if !s.IsVisible(r) {
		return
	}
	s.dirty = true
	idx := r.index
	if idx >= 0 && idx < s.validUpTo && s.flat[idx] == r {
		if !inclusive {
			idx++
		}
		s.validUpTo = idx
	}
}

func (s *Store) indexOf(r *Row) int {
	idx := r.index
	if idx >= 0 && idx < len(s.flat) && s.flat[idx] == r {
		return idx
	}
	return -1
}

// first returns the first visible row.
func (s *Store) first() *Row {
	if s.opts.ShowRoot {
		return s.root
	}
	if len(s.root.children) == 0 {
		return nil
	}
	return s.root.children[0]
}

// next returns the row after r in visible pre-order.
func (s *Store) next(r *Row) *Row {
	if r.expanded && len(r.children) > 0 {
		return r.children[0]
	}
	for r.parent != nil {
		p := r.parent
		if r.pos+1 < len(p.children) {
			return p.children[r.pos+1]
		}
		r = p
	}
	return nil
}

// ensure rebuilds the invalidated suffix of the visible order.
func (s *Store) ensure() {
	if !s.dirty {
		return
	}
	start := time.Now()
	from := s.validUpTo

	// A fresh slice keeps previously returned snapshots stable.
	flat := make([]*Row, from, max(len(s.flat), from+16))
	copy(flat, s.flat[:from])

	var r *Row
	if from == 0 {
		r = s.first()
	} else {
		r = s.next(flat[from-1])
	}
	for ; r != nil; r = s.next(r) {
		r.index = len(flat)
		flat = append(flat, r)
	}

	s.flat = flat
	s.validUpTo = len(flat)
	s.dirty = false
	logger.Debug("rowstore: rebuilt visible order",
		"from", from, "visible", len(flat), "elapsed", time.Since(start))
}

// Flatten returns the visible rows in order. The returned slice is a
// snapshot that later mutations do not modify.
func (s *Store) Flatten() []*Row {
	s.ensure()
	return s.flat[:len(s.flat):len(s.flat)]
}

// Visible iterates the visible rows. Each iteration starts from the current
// order, so the sequence is restartable.
func (s *Store) Visible() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		for _, r := range s.Flatten() {
			if !yield(r) {
				return
			}
		}
	}
}

// VisibleCount returns the number of visible rows.
func (s *Store) VisibleCount() int {
	s.ensure()
	return len(s.flat)
}

// RowAt returns the visible row at index, or nil when out of range.
func (s *Store) RowAt(index int) *Row {
	s.ensure()
	if index < 0 || index >= len(s.flat) {
		return nil
	}
	return s.flat[index]
}

// Range returns the visible rows between a and b inclusive, in visible
// order, accepting either direction.
func (s *Store) Range(a, b int) ([]*Row, error) {
	s.ensure()
	if a > b {
		a, b = b, a
	}
	if a < 0 || b >= len(s.flat) {
		return nil, types.Wrap(types.ErrNotVisible, "range",
			fmt.Errorf("[%d, %d] outside [0, %d)", a, b, len(s.flat)))
	}
	return s.flat[a : b+1 : b+1], nil
}

// All iterates every materialized row in pre-order, including collapsed
// subtrees that are still retained.
func (s *Store) All() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		var walk func(r *Row) bool
		walk = func(r *Row) bool {
			if !yield(r) {
				return false
			}
			for _, c := range r.children {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(s.root)
	}
}

// -----------------------------------------------------------------------------
// Mutations
// -----------------------------------------------------------------------------

func (s *Store) check(op string, r *Row) error {
	if r == nil || r.store != s {
		return types.Wrap(types.ErrNotFound, op, fmt.Errorf("row is not live in this store"))
	}
	return nil
}

// Expand marks r expanded. It never loads; callers load children first.
func (s *Store) Expand(r *Row) error {
	if err := s.check("expand", r); err != nil {
		return err
	}
	if r.expanded {
		return nil
	}
	r.expanded = true
	s.invalidate(r, false)
	return nil
}

// Collapse marks r collapsed. With ReleaseOnCollapse its descendants are
// destroyed and it returns to Unloaded.
func (s *Store) Collapse(r *Row) error {
	if err := s.check("collapse", r); err != nil {
		return err
	}
	if r == s.root && !s.opts.ShowRoot {
		return nil
	}
	if !r.expanded {
		return nil
	}
	s.invalidate(r, false)
	r.expanded = false

	if s.opts.ReleaseOnCollapse && len(r.children) > 0 {
		var gone []*Row
		for _, c := range r.children {
			gone = s.destroy(c, gone)
		}
		r.children = nil
		r.loadState = types.Unloaded
		r.loadErr = nil
		s.notifyRemoved(gone)
	}
	return nil
}

// MarkLoading moves r to Loading.
func (s *Store) MarkLoading(r *Row) error {
	if err := s.check("mark loading", r); err != nil {
		return err
	}
	r.loadState = types.Loading
	r.loadErr = nil
	return nil
}

// MarkLoadFailed returns r to Unloaded and records err.
func (s *Store) MarkLoadFailed(r *Row, err error) error {
	if cerr := s.check("mark load failed", r); cerr != nil {
		return cerr
	}
	r.loadState = types.Unloaded
	r.loadErr = err
	return nil
}

// SetCanExpand sets the expansion affordance. Retracting it also collapses r.
func (s *Store) SetCanExpand(r *Row, can bool) error {
	if err := s.check("set can expand", r); err != nil {
		return err
	}
	r.canExpand = can
	if !can && r.expanded && r != s.root {
		s.invalidate(r, false)
		r.expanded = false
	}
	return nil
}

// SetSelected flips the selection flag. Only the selection coordinator
// should call it.
func (s *Store) SetSelected(r *Row, selected bool) {
	if r != nil && r.store == s {
		r.selected = selected
	}
}

// SetChildren replaces the children of parent with rows for items and marks
// parent Loaded. Rows for items that were already children are kept along
// with their state; rows for items no longer present are destroyed.
func (s *Store) SetChildren(parent *Row, items []types.Item) ([]*Row, error) {
	if err := s.check("set children", parent); err != nil {
		return nil, err
	}

	keep := make(map[types.Item]*Row, len(parent.children))
	for _, c := range parent.children {
		keep[c.item] = c
	}

	seen := make(map[types.Item]struct{}, len(items))
	for _, it := range items {
		if it == nil {
			return nil, types.Wrap(types.ErrNilItem, "set children", nil)
		}
		if _, dup := seen[it]; dup {
			return nil, types.Wrap(types.ErrDuplicate, "set children", fmt.Errorf("item %v listed twice", it))
		}
		seen[it] = struct{}{}
		if other, ok := s.byItem[it]; ok && other.parent != parent {
			return nil, types.Wrap(types.ErrDuplicate, "set children", fmt.Errorf("item %v already has a row elsewhere", it))
		}
	}

	s.invalidate(parent, false)

	var gone []*Row
	for _, c := range parent.children {
		if _, ok := seen[c.item]; !ok {
			gone = s.destroy(c, gone)
		}
	}

	children := make([]*Row, len(items))
	for i, it := range items {
		if c, ok := keep[it]; ok && c.store == s {
			c.pos = i
			children[i] = c
			continue
		}
		children[i] = s.newRow(it, parent, i)
	}
	parent.children = children
	parent.loadState = types.Loaded
	parent.loadErr = nil
	parent.canExpand = len(children) > 0

	s.notifyRemoved(gone)
	return children, nil
}

// InsertChild adds a row for item under a loaded parent at position at
// (clamped to the child count).
func (s *Store) InsertChild(parent *Row, at int, item types.Item) (*Row, error) {
	if err := s.check("insert child", parent); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, types.Wrap(types.ErrNilItem, "insert child", nil)
	}
	if _, ok := s.byItem[item]; ok {
		return nil, types.Wrap(types.ErrDuplicate, "insert child", fmt.Errorf("item %v already has a row", item))
	}
	if parent.loadState != types.Loaded {
		// Unloaded children arrive with the next load.
		return nil, nil
	}
	at = min(max(at, 0), len(parent.children))

	s.invalidate(parent, false)
	r := s.newRow(item, parent, at)
	parent.children = append(parent.children, nil)
	copy(parent.children[at+1:], parent.children[at:])
	parent.children[at] = r
	for i := at + 1; i < len(parent.children); i++ {
		parent.children[i].pos = i
	}
	parent.canExpand = true
	return r, nil
}

// Remove destroys the row for item and its subtree.
func (s *Store) Remove(item types.Item) error {
	r, ok := s.byItem[item]
	if !ok {
		return types.Wrap(types.ErrNotFound, "remove", fmt.Errorf("item %v", item))
	}
	if r == s.root {
		return &types.Error{Kind: types.ErrKindContract, Op: "remove", Msg: "cannot remove the root row"}
	}
	s.invalidate(r, true)

	p := r.parent
	p.children = append(p.children[:r.pos], p.children[r.pos+1:]...)
	for i := r.pos; i < len(p.children); i++ {
		p.children[i].pos = i
	}
	if len(p.children) == 0 {
		p.canExpand = false
	}

	s.notifyRemoved(s.destroy(r, nil))
	return nil
}

// destroy detaches r and its subtree, appending them to acc.
func (s *Store) destroy(r *Row, acc []*Row) []*Row {
	for _, c := range r.children {
		acc = s.destroy(c, acc)
	}
	if s.byItem[r.item] == r {
		delete(s.byItem, r.item)
	}
	r.store = nil
	r.children = nil
	r.index = -1
	return append(acc, r)
}

func (s *Store) notifyRemoved(rows []*Row) {
	if len(rows) == 0 {
		return
	}
	for _, fn := range s.removed {
		fn(rows)
	}
}
