// Package widgetpool creates, binds and recycles the visual elements that
// display rows, cells and headers. Widgets scrolled out of view return to
// an idle pool and are rebound when rows scroll back in.
package widgetpool

import (
	"fmt"
	"time"

	"github.com/joshuapare/vtree/internal/columns"
	"github.com/joshuapare/vtree/internal/hostcall"
	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

// CreatorFunc builds the host visual for a new widget of kind and key.
type CreatorFunc func(kind types.WidgetKind, key string) any

// DataSource supplies binding data. Errors and panics from its methods
// degrade the affected widget to the unavailable state.
type DataSource interface {
	BindingKey(row *rowstore.Row) string
	RowData(row *rowstore.Row) (types.RowData, error)
	CellData(row *rowstore.Row, col *columns.Column) (types.CellData, error)
}

// Options configures a Pool.
type Options struct {
	// Placeholder is the text of unavailable widgets.
	Placeholder string
	// OnRelease runs before a widget is reset on release, while its row and
	// column are still set.
	OnRelease func(*Widget)
}

// Stats counts pool activity.
type Stats struct {
	Created  int
	Reused   int
	Released int
	Bound    int
	Idle     int
	Failed   int // binds that ended unavailable
}

// maxLayoutDepth bounds layout passes started from data callbacks of an
// outer pass.
const maxLayoutDepth = 4

type poolKey struct {
	kind types.WidgetKind
	key  string
}

type slot struct {
	kind types.WidgetKind
	row  *rowstore.Row
	col  *columns.Column
}

// Pool owns every widget of one tree.
type Pool struct {
	source   DataSource
	opts     Options
	creators map[types.WidgetKind]CreatorFunc
	idle     map[poolKey][]*Widget
	bound    map[slot]*Widget
	pinned   map[*Widget]int // widgets held by running layout passes
	depth    int             // running layout passes
	all      []*Widget
	nextID   int
	stats    Stats
	disposed bool
}

// New returns an empty pool reading binding data from source.
func New(source DataSource, opts Options) *Pool {
	if opts.Placeholder == "" {
		opts.Placeholder = "<unavailable>"
	}
	return &Pool{
		source:   source,
		opts:     opts,
		creators: make(map[types.WidgetKind]CreatorFunc),
		idle:     make(map[poolKey][]*Widget),
		bound:    make(map[slot]*Widget),
		pinned:   make(map[*Widget]int),
	}
}

// Register installs the creator for kind, replacing any previous one.
// Kinds without a creator get widgets with a nil visual.
func (p *Pool) Register(kind types.WidgetKind, fn CreatorFunc) {
	p.creators[kind] = fn
}

// Stats returns a snapshot of the counters.
func (p *Pool) Stats() Stats {
	s := p.stats
	s.Bound = len(p.bound)
	s.Idle = 0
	for _, ws := range p.idle {
		s.Idle += len(ws)
	}
	return s
}

// Acquire returns an idle widget of kind and key, or a new one.
func (p *Pool) Acquire(kind types.WidgetKind, key string) (*Widget, error) {
	if p.disposed {
		return nil, types.Wrap(types.ErrDisposed, "acquire", nil)
	}
	pk := poolKey{kind, key}
	if ws := p.idle[pk]; len(ws) > 0 {
		w := ws[len(ws)-1]
		p.idle[pk] = ws[:len(ws)-1]
		p.stats.Reused++
		return w, nil
	}
	return p.create(kind, key)
}

func (p *Pool) create(kind types.WidgetKind, key string) (*Widget, error) {
	var visual any
	if fn := p.creators[kind]; fn != nil {
		v, err := hostcall.Value("create "+kind.String(), func() (any, error) {
			return fn(kind, key), nil
		})
		if err != nil {
			return nil, err
		}
		visual = v
	}
	p.nextID++
	w := &Widget{kind: kind, key: key, id: p.nextID, visual: visual}
	p.all = append(p.all, w)
	p.stats.Created++
	return w, nil
}

// Prewarm creates n idle widgets of kind and key ahead of first layout.
func (p *Pool) Prewarm(kind types.WidgetKind, key string, n int) error {
	for range n {
		w, err := p.create(kind, key)
		if err != nil {
			return err
		}
		pk := poolKey{kind, key}
		p.idle[pk] = append(p.idle[pk], w)
	}
	return nil
}

// Release resets w and returns it to the idle pool. Releasing an idle
// widget is a no-op.
func (p *Pool) Release(w *Widget) {
	if w == nil || !w.bound {
		return
	}
	if p.opts.OnRelease != nil {
		_ = hostcall.Call("on-release", func() error {
			p.opts.OnRelease(w)
			return nil
		})
	}
	s := slot{w.kind, w.row, w.col}
	if p.bound[s] == w {
		delete(p.bound, s)
	}
	w.reset()
	pk := poolKey{w.kind, w.key}
	p.idle[pk] = append(p.idle[pk], w)
	p.stats.Released++
}

func checkSlot(kind types.WidgetKind, row *rowstore.Row, col *columns.Column) error {
	var ok bool
	switch {
	case kind == types.WidgetCell:
		ok = row != nil && col != nil
	case kind == types.WidgetColumnHeader:
		ok = row == nil && col != nil
	case kind.RowScoped():
		ok = row != nil && col == nil
	}
	if !ok {
		return types.Wrap(types.ErrWrongWidgetKind, "bind",
			fmt.Errorf("%s widget cannot occupy slot (row=%t, column=%t)", kind, row != nil, col != nil))
	}
	return nil
}

// Bind attaches w to the (row, col) slot of its kind and loads fresh data.
// Any state from a previous binding is cleared first, so binding is
// idempotent.
func (p *Pool) Bind(w *Widget, row *rowstore.Row, col *columns.Column) error {
	if p.disposed {
		return types.Wrap(types.ErrDisposed, "bind", nil)
	}
	if err := checkSlot(w.kind, row, col); err != nil {
		return err
	}
	if row != nil && !row.Live() {
		return types.Wrap(types.ErrNotFound, "bind", fmt.Errorf("row was destroyed"))
	}
	s := slot{w.kind, row, col}
	if other, ok := p.bound[s]; ok && other != w {
		return &types.Error{Kind: types.ErrKindContract, Op: "bind",
			Msg: fmt.Sprintf("slot already holds %s widget %d", w.kind, other.id)}
	}

	if w.bound {
		old := slot{w.kind, w.row, w.col}
		if p.bound[old] == w {
			delete(p.bound, old)
		}
	} else {
		p.unidle(w)
	}
	w.reset()
	w.row, w.col, w.bound = row, col, true
	p.bound[s] = w
	p.fill(w)
	return nil
}

// unidle removes w from the idle list so Acquire cannot hand it out while
// it is bound.
func (p *Pool) unidle(w *Widget) {
	pk := poolKey{w.kind, w.key}
	ws := p.idle[pk]
	for i, iw := range ws {
		if iw == w {
			p.idle[pk] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}

func (p *Pool) pin(w *Widget) { p.pinned[w]++ }

func (p *Pool) unpin(w *Widget) {
	if p.pinned[w]--; p.pinned[w] <= 0 {
		delete(p.pinned, w)
	}
}

func (p *Pool) fill(w *Widget) {
	// Callbacks below may run a nested layout.
	p.pin(w)
	defer p.unpin(w)

	row := w.row
	if row != nil {
		w.Depth = max(row.Depth(), 0)
		w.Selected = row.IsSelected()
	}

	var err error
	switch w.kind {
	case types.WidgetRow, types.WidgetHeader:
		var data types.RowData
		data, err = hostcall.Value("get-row-data", func() (types.RowData, error) {
			return p.source.RowData(row)
		})
		if err == nil {
			w.Style = data.Style
			if w.kind == types.WidgetHeader {
				w.Text = data.Header
			}
		}
	case types.WidgetCell:
		var data types.CellData
		data, err = hostcall.Value("get-cell-data", func() (types.CellData, error) {
			return p.source.CellData(row, w.col)
		})
		if err == nil {
			w.Text, w.Value, w.ReadOnly, w.Style = data.Text, data.Value, data.ReadOnly, data.Style
		}
	case types.WidgetExpansion:
		w.Expanded = row.IsExpanded()
		w.CanExpand = row.CanExpand()
		w.Loading = row.LoadState() == types.Loading
		if row.LoadErr() != nil {
			w.Unavailable = true
			w.Err = row.LoadErr()
		}
	case types.WidgetColumnHeader:
		w.Text = w.col.Title()
	}

	if err != nil {
		w.Text = p.opts.Placeholder
		w.Value = nil
		w.Unavailable = true
		w.Err = err
		p.stats.Failed++
	}
}

// Lookup returns the widget bound to the slot, if any.
func (p *Pool) Lookup(kind types.WidgetKind, row *rowstore.Row, col *columns.Column) (*Widget, bool) {
	w, ok := p.bound[slot{kind, row, col}]
	return w, ok
}

// Obtain returns the widget bound to the slot, rebinding it with fresh data,
// or acquires and binds a new one.
func (p *Pool) Obtain(kind types.WidgetKind, row *rowstore.Row, col *columns.Column) (*Widget, error) {
	if w, ok := p.Lookup(kind, row, col); ok {
		return w, p.Bind(w, row, col)
	}
	if err := checkSlot(kind, row, col); err != nil {
		return nil, err
	}
	w, err := p.Acquire(kind, p.keyFor(row))
	if err != nil {
		return nil, err
	}
	if err := p.Bind(w, row, col); err != nil {
		p.idle[poolKey{w.kind, w.key}] = append(p.idle[poolKey{w.kind, w.key}], w)
		return nil, err
	}
	return w, nil
}

func (p *Pool) keyFor(row *rowstore.Row) string {
	if row == nil {
		return ""
	}
	key, err := hostcall.Value("get-binding-key", func() (string, error) {
		return p.source.BindingKey(row), nil
	})
	if err != nil {
		return ""
	}
	return key
}

// ReleaseRows releases every widget bound to one of rows. The tree calls it
// when rows are destroyed.
func (p *Pool) ReleaseRows(rows []*rowstore.Row) {
	gone := make(map[*rowstore.Row]struct{}, len(rows))
	for _, r := range rows {
		gone[r] = struct{}{}
	}
	for s, w := range p.bound {
		if _, ok := gone[s.row]; ok {
			p.Release(w)
		}
	}
}

// -----------------------------------------------------------------------------
// Layout
// -----------------------------------------------------------------------------

// LayoutOptions selects which row-scoped widgets a layout creates.
type LayoutOptions struct {
	RowHeaders    bool
	Dividers      bool
	ColumnHeaders bool
}

// FrameRow holds the widgets of one laid-out row.
type FrameRow struct {
	Row       *rowstore.Row
	Widget    *Widget
	Expansion *Widget
	Header    *Widget   // nil without row headers
	Divider   *Widget   // nil without dividers
	Cells     []*Widget // one per column
}

// Frame is the result of one layout pass.
type Frame struct {
	Columns       []*columns.Column
	ColumnHeaders []*Widget
	Rows          []FrameRow
}

// Layout binds widgets for rows x cols. Widgets whose slots are no longer
// needed are all released before any widget is acquired, so outgoing rows
// feed incoming ones.
//
// A data callback may start a nested pass. The nested pass leaves the
// widgets already placed in an outer frame bound where they are.
func (p *Pool) Layout(rows []*rowstore.Row, cols []*columns.Column, opts LayoutOptions) (*Frame, error) {
	if p.disposed {
		return nil, types.Wrap(types.ErrDisposed, "layout", nil)
	}
	if p.depth >= maxLayoutDepth {
		return nil, &types.Error{Kind: types.ErrKindState, Op: "layout",
			Msg: fmt.Sprintf("layout passes nested more than %d deep", maxLayoutDepth)}
	}
	start := time.Now()
	p.depth++
	var held []*Widget
	defer func() {
		p.depth--
		for _, w := range held {
			p.unpin(w)
		}
	}()

	want := make(map[slot]struct{}, len(rows)*(len(cols)+3)+len(cols))
	add := func(kind types.WidgetKind, r *rowstore.Row, c *columns.Column) {
		want[slot{kind, r, c}] = struct{}{}
	}
	for _, r := range rows {
		add(types.WidgetRow, r, nil)
		add(types.WidgetExpansion, r, nil)
		if opts.RowHeaders {
			add(types.WidgetHeader, r, nil)
		}
		if opts.Dividers {
			add(types.WidgetDivider, r, nil)
		}
		for _, c := range cols {
			add(types.WidgetCell, r, c)
		}
	}
	if opts.ColumnHeaders {
		for _, c := range cols {
			add(types.WidgetColumnHeader, nil, c)
		}
	}

	released := 0
	for s, w := range p.bound {
		if _, keep := want[s]; !keep && p.pinned[w] == 0 {
			p.Release(w)
			released++
		}
	}

	frame := &Frame{Columns: cols, Rows: make([]FrameRow, 0, len(rows))}
	var err error
	obtain := func(kind types.WidgetKind, r *rowstore.Row, c *columns.Column) *Widget {
		if err != nil {
			return nil
		}
		var w *Widget
		w, err = p.Obtain(kind, r, c)
		if err == nil {
			p.pin(w)
			held = append(held, w)
		}
		return w
	}

	if opts.ColumnHeaders {
		for _, c := range cols {
			frame.ColumnHeaders = append(frame.ColumnHeaders, obtain(types.WidgetColumnHeader, nil, c))
		}
	}
	for _, r := range rows {
		fr := FrameRow{
			Row:       r,
			Widget:    obtain(types.WidgetRow, r, nil),
			Expansion: obtain(types.WidgetExpansion, r, nil),
			Cells:     make([]*Widget, 0, len(cols)),
		}
		if opts.RowHeaders {
			fr.Header = obtain(types.WidgetHeader, r, nil)
		}
		if opts.Dividers {
			fr.Divider = obtain(types.WidgetDivider, r, nil)
		}
		for _, c := range cols {
			fr.Cells = append(fr.Cells, obtain(types.WidgetCell, r, c))
		}
		frame.Rows = append(frame.Rows, fr)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("widgetpool: layout",
		"rows", len(rows), "columns", len(cols), "released", released,
		"bound", len(p.bound), "elapsed", time.Since(start))
	return frame, nil
}

// Dispose releases every widget, disposes host visuals and empties the
// pool. The pool cannot be used afterwards.
func (p *Pool) Dispose() {
	if p.disposed {
		return
	}
	for _, w := range p.bound {
		p.Release(w)
	}
	for _, w := range p.all {
		if d, ok := w.visual.(Disposer); ok {
			_ = hostcall.Call("dispose widget", func() error {
				d.Dispose()
				return nil
			})
		}
	}
	p.all = nil
	p.idle = map[poolKey][]*Widget{}
	p.bound = map[slot]*Widget{}
	p.pinned = map[*Widget]int{}
	p.disposed = true
}
