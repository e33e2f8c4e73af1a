// Package childload decides when rows load their children from the item
// graph and applies the result to the row store.
package childload

import (
	"context"
	"time"

	"github.com/joshuapare/vtree/internal/hostcall"
	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/internal/resolve"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

// Options configures an Engine.
type Options struct {
	// DefaultPolicy is used when no resolver answers.
	DefaultPolicy types.ChildPolicy
	// PolicyHook is the get-child-policy notification. ok=false defers to
	// BindingPolicy.
	PolicyHook func(*rowstore.Row) (types.ChildPolicy, bool)
	// BindingPolicy returns the default declared by the row's binding.
	BindingPolicy func(*rowstore.Row) (types.ChildPolicy, bool)
	// OnLoaded is told about every finished load, successful or not.
	OnLoaded func(row *rowstore.Row, err error)
	// Order arranges freshly loaded children, e.g. by the sort column.
	// Nil keeps the adapter's order.
	Order func(parent *rowstore.Row, items []types.Item) []types.Item
}

// Engine applies child-load policies to a row store.
type Engine struct {
	store    *rowstore.Store
	graph    types.ItemGraph
	policy   *resolve.Chain[*rowstore.Row, types.ChildPolicy]
	onLoaded func(*rowstore.Row, error)
	order    func(*rowstore.Row, []types.Item) []types.Item
}

// New returns an engine loading children of store rows from graph.
func New(store *rowstore.Store, graph types.ItemGraph, opts Options) *Engine {
	chain := resolve.New[*rowstore.Row, types.ChildPolicy](opts.DefaultPolicy).
		Add("row-override", (*rowstore.Row).PolicyOverride)
	if opts.PolicyHook != nil {
		chain.Add("get-child-policy", opts.PolicyHook)
	}
	if opts.BindingPolicy != nil {
		chain.Add("binding-default", opts.BindingPolicy)
	}
	return &Engine{
		store:    store,
		graph:    graph,
		policy:   chain,
		onLoaded: opts.OnLoaded,
		order:    opts.Order,
	}
}

// Policy resolves the child policy for row: per-row override first, then the
// get-child-policy hook, then the binding default, then DefaultPolicy.
func (e *Engine) Policy(row *rowstore.Row) types.ChildPolicy {
	p, _ := e.policy.Resolve(row)
	return p
}

// SetDefaultPolicy changes the binding default.
func (e *Engine) SetDefaultPolicy(p types.ChildPolicy) { e.policy.SetFallback(p) }

// OnDisplay is called for each row entering the viewport. Normal and
// AutoExpand rows load on first display; AutoExpand rows with children are
// then expanded. Rows whose last load failed are not retried here.
// It reports whether the visible order changed.
func (e *Engine) OnDisplay(ctx context.Context, row *rowstore.Row) (bool, error) {
	if !row.Live() || row.LoadState() != types.Unloaded || row.LoadErr() != nil || !row.CanExpand() {
		return false, nil
	}
	policy := e.Policy(row)
	if policy == types.PolicyLoadOnExpand {
		return false, nil
	}
	if err := e.load(ctx, row); err != nil {
		return false, err
	}
	if policy == types.PolicyAutoExpand && row.Live() && row.ChildCount() > 0 && !row.IsExpanded() {
		if err := e.store.Expand(row); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Expand loads row if needed and expands it. It reports false when the row
// has no children to show; for LoadOnExpand rows that loaded zero children
// the expansion affordance is retracted. A row whose previous load failed is
// loaded again, since the user asked for it.
func (e *Engine) Expand(ctx context.Context, row *rowstore.Row) (bool, error) {
	if !row.Live() {
		return false, types.Wrap(types.ErrNotFound, "expand", nil)
	}
	switch row.LoadState() {
	case types.Loading:
		return row.IsExpanded(), nil
	case types.Unloaded:
		if err := e.load(ctx, row); err != nil {
			return false, err
		}
		if !row.Live() {
			return false, nil
		}
	}
	if row.ChildCount() == 0 {
		if err := e.store.SetCanExpand(row, false); err != nil {
			return false, err
		}
		return false, nil
	}
	if row.IsExpanded() {
		return true, nil
	}
	return true, e.store.Expand(row)
}

// EnsureLoaded loads row's children if they are not loaded yet, regardless
// of policy. The tree uses it for the root.
func (e *Engine) EnsureLoaded(ctx context.Context, row *rowstore.Row) error {
	if row.LoadState() != types.Unloaded {
		return nil
	}
	return e.load(ctx, row)
}

// Collapse collapses row.
func (e *Engine) Collapse(row *rowstore.Row) error {
	return e.store.Collapse(row)
}

// Toggle expands a collapsed row or collapses an expanded one. It reports
// whether the row ends up expanded.
func (e *Engine) Toggle(ctx context.Context, row *rowstore.Row) (bool, error) {
	if row.IsExpanded() {
		return false, e.Collapse(row)
	}
	return e.Expand(ctx, row)
}

// Reload fetches the children of row again, keeping rows for items that
// are still present.
func (e *Engine) Reload(ctx context.Context, row *rowstore.Row) error {
	if !row.Live() {
		return types.Wrap(types.ErrNotFound, "reload", nil)
	}
	return e.load(ctx, row)
}

// UpdateChildren brings the loaded children of row up to date. With reload
// the children are fetched again; otherwise the current children are only
// rearranged by Order. With recursive every loaded descendant is updated
// too. Unloaded rows are skipped: they pick up changes on their next load.
func (e *Engine) UpdateChildren(ctx context.Context, row *rowstore.Row, reload, recursive bool) error {
	if !row.Live() {
		return types.Wrap(types.ErrNotFound, "update children", nil)
	}
	start := time.Now()
	stack := []*rowstore.Row{row}
	updated := 0
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !r.Live() || r.LoadState() != types.Loaded {
			continue
		}
		var err error
		if reload {
			err = e.load(ctx, r)
		} else {
			err = e.reorder(r)
		}
		if err != nil {
			if r == row {
				return err
			}
			continue
		}
		updated++
		if recursive {
			stack = append(stack, r.Children()...)
		}
	}
	logger.Debug("childload: update children", "item", row.Item(), "reload", reload, "recursive", recursive,
		"updated", updated, "elapsed", time.Since(start))
	return nil
}

func (e *Engine) reorder(row *rowstore.Row) error {
	if e.order == nil {
		return nil
	}
	kids := row.Children()
	items := make([]types.Item, len(kids))
	for i, k := range kids {
		items[i] = k.Item()
	}
	_, err := e.store.SetChildren(row, e.arrange(row, items))
	return err
}

func (e *Engine) arrange(row *rowstore.Row, items []types.Item) []types.Item {
	if e.order == nil || len(items) < 2 {
		return items
	}
	out, err := hostcall.Value("order children", func() ([]types.Item, error) {
		return e.order(row, items), nil
	})
	if err != nil || len(out) != len(items) {
		return items
	}
	return out
}

// CollapseChildren collapses every loaded child of row; with recursive their
// descendants as well. row itself keeps its expansion.
func (e *Engine) CollapseChildren(row *rowstore.Row, recursive bool) error {
	if !row.Live() {
		return types.Wrap(types.ErrNotFound, "collapse children", nil)
	}
	for _, c := range row.Children() {
		if recursive {
			if err := e.CollapseChildren(c, true); err != nil {
				return err
			}
		}
		if err := e.store.Collapse(c); err != nil {
			return err
		}
	}
	return nil
}

// ExpandAll expands row and every descendant down to maxDepth levels below
// it (negative means unlimited). Visible indices are recomputed once, on the
// next read.
func (e *Engine) ExpandAll(ctx context.Context, row *rowstore.Row, maxDepth int) error {
	start := time.Now()
	type frame struct {
		row   *rowstore.Row
		level int
	}
	stack := []frame{{row, 0}}
	expanded := 0
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ok, err := e.Expand(ctx, f.row)
		if err != nil {
			// A failed subtree does not stop its siblings.
			continue
		}
		if !ok {
			continue
		}
		expanded++
		if maxDepth >= 0 && f.level >= maxDepth {
			continue
		}
		kids := f.row.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], f.level + 1})
		}
	}
	logger.Debug("childload: expand all", "expanded", expanded, "elapsed", time.Since(start))
	return nil
}

func (e *Engine) load(ctx context.Context, row *rowstore.Row) error {
	// Already in flight further up the stack.
	if row.LoadState() == types.Loading {
		return nil
	}
	start := time.Now()
	if err := e.store.MarkLoading(row); err != nil {
		return err
	}

	items, err := hostcall.Value("children", func() ([]types.Item, error) {
		return e.graph.Children(ctx, row.Item())
	})
	if !row.Live() {
		// Removed while the adapter ran.
		return nil
	}
	if err != nil {
		err = types.Wrap(types.ErrAdapter, "load children", err)
		_ = e.store.MarkLoadFailed(row, err)
		logger.Warn("childload: load failed", "item", row.Item(), "error", err)
		e.notify(row, err)
		return err
	}

	if _, err := e.store.SetChildren(row, e.arrange(row, items)); err != nil {
		_ = e.store.MarkLoadFailed(row, err)
		e.notify(row, err)
		return err
	}
	logger.Debug("childload: loaded", "item", row.Item(), "children", len(items), "elapsed", time.Since(start))
	e.notify(row, nil)
	return nil
}

func (e *Engine) notify(row *rowstore.Row, err error) {
	if e.onLoaded == nil {
		return
	}
	_ = hostcall.Call("on-loaded", func() error {
		e.onLoaded(row, err)
		return nil
	})
}
