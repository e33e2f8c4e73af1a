// Package dragdrop resolves where a drag payload would land relative to the
// row under the pointer and with which effect. It never mutates data; an
// accepted drop is handed to the host through the row-drop notification.
package dragdrop

import (
	"slices"

	"github.com/joshuapare/vtree/internal/hostcall"
	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

// DefaultEdgeBand is the fraction of row height at the top and bottom that
// resolves to Above and Below when OnRow is also allowed.
const DefaultEdgeBand = 0.25

// Options configures a Resolver. Every hook is optional.
type Options struct {
	// Defaults returns the binding-declared locations for a row. When nil,
	// every row allows OnRow, AboveRow and BelowRow.
	Defaults func(row *rowstore.Row) types.DropLocation
	// AllowEmptySpace permits drops below the last row.
	AllowEmptySpace bool
	// Formats returns the payload formats a row accepts. Unset, or a nil
	// result, accepts every format.
	Formats func(row *rowstore.Row) []string
	// Override is the get-allowed-row-drop-locations notification. It may
	// narrow or widen the default set. row is nil for the empty space.
	Override func(row *rowstore.Row, p types.Payload, allowed types.DropLocation) types.DropLocation
	// Effect is the get-row-drop-effect notification. Unset means EffectNone.
	Effect func(row *rowstore.Row, loc types.DropLocation, p types.Payload) types.DropEffect
	// OnDrop is the row-drop notification.
	OnDrop func(Event)
	// AllowDrag is the get-allow-row-drag notification; ok=false defers to
	// DragDefault.
	AllowDrag   func(row *rowstore.Row) (allow, ok bool)
	DragDefault bool
	EdgeBand    float64
}

// Resolution is the outcome of resolving a pointer position.
type Resolution struct {
	Row      *rowstore.Row // nil for the empty space
	Allowed  types.DropLocation
	Location types.DropLocation // single location, or DropNone
	Effect   types.DropEffect
}

// Accepted reports whether the drop would be delivered.
func (r Resolution) Accepted() bool {
	return r.Location != types.DropNone && r.Effect != types.EffectNone
}

// Event is delivered by the row-drop notification.
type Event struct {
	Row      *rowstore.Row
	Location types.DropLocation
	Payload  types.Payload
	Effect   types.DropEffect
}

// Resolver computes drop locations for rows of one store.
type Resolver struct {
	store *rowstore.Store
	opts  Options
}

// New returns a resolver. store is used to reject drops of a row onto
// itself or its descendants.
func New(store *rowstore.Store, opts Options) *Resolver {
	if opts.EdgeBand <= 0 || opts.EdgeBand > 0.5 {
		opts.EdgeBand = DefaultEdgeBand
	}
	return &Resolver{store: store, opts: opts}
}

const rowLocations = types.DropOnRow | types.DropAboveRow | types.DropBelowRow

// Allowed combines binding defaults, the override hook and payload
// compatibility into the set of legal locations for row.
func (r *Resolver) Allowed(row *rowstore.Row, p types.Payload) types.DropLocation {
	var set types.DropLocation
	switch {
	case row == nil:
		if r.opts.AllowEmptySpace {
			set = types.DropEmptyRowSpace
		}
	case r.opts.Defaults != nil:
		d, err := hostcall.Value("drop-defaults", func() (types.DropLocation, error) {
			return r.opts.Defaults(row), nil
		})
		if err == nil {
			set = d.Intersect(rowLocations)
		}
	default:
		set = rowLocations
	}

	if r.opts.Override != nil {
		o, err := hostcall.Value("get-allowed-row-drop-locations", func() (types.DropLocation, error) {
			return r.opts.Override(row, p, set), nil
		})
		if err != nil {
			return types.DropNone
		}
		set = o
	}

	// Row locations need a row, the empty space needs none.
	if row == nil {
		set = set.Intersect(types.DropEmptyRowSpace)
	} else {
		set = set.Intersect(rowLocations)
	}

	if !r.compatible(row, p) {
		return types.DropNone
	}
	if row != nil && r.isSelfOrDescendant(row, p.Source) {
		return types.DropNone
	}
	return set
}

func (r *Resolver) compatible(row *rowstore.Row, p types.Payload) bool {
	if r.opts.Formats == nil {
		return true
	}
	formats, err := hostcall.Value("drop-formats", func() ([]string, error) {
		return r.opts.Formats(row), nil
	})
	if err != nil {
		return false
	}
	return formats == nil || slices.Contains(formats, p.Format)
}

func (r *Resolver) isSelfOrDescendant(row *rowstore.Row, source types.Item) bool {
	if source == nil || r.store == nil {
		return false
	}
	src, ok := r.store.RowFor(source)
	if !ok {
		return false
	}
	return row == src || row.IsDescendantOf(src)
}

// Pick chooses one location from allowed for the pointer geometry. The
// nearest edge decides between AboveRow and BelowRow, OnRow owns the middle
// of the row and wins on band boundaries, and a pointer exactly at the
// midpoint of a row allowing only AboveRow and BelowRow picks AboveRow.
func Pick(allowed types.DropLocation, row *rowstore.Row, g types.Geometry, band float64) types.DropLocation {
	if row == nil {
		if allowed.Has(types.DropEmptyRowSpace) {
			return types.DropEmptyRowSpace
		}
		return types.DropNone
	}
	cand := allowed.Intersect(rowLocations)
	if cand.Empty() {
		return types.DropNone
	}

	frac := 0.5
	if g.Height > 0 {
		frac = min(max(g.Y/g.Height, 0), 1)
	}
	above, below := cand.Has(types.DropAboveRow), cand.Has(types.DropBelowRow)

	if cand.Has(types.DropOnRow) {
		switch {
		case above && frac < band:
			return types.DropAboveRow
		case below && frac > 1-band:
			return types.DropBelowRow
		default:
			return types.DropOnRow
		}
	}
	switch {
	case above && below:
		if frac > 0.5 {
			return types.DropBelowRow
		}
		return types.DropAboveRow
	case above:
		return types.DropAboveRow
	default:
		return types.DropBelowRow
	}
}

// Resolve computes the allowed set, the location under the pointer and the
// drop effect. An empty allowed set forces DropNone and EffectNone whatever
// the effect hook says.
func (r *Resolver) Resolve(row *rowstore.Row, g types.Geometry, p types.Payload) Resolution {
	res := Resolution{Row: row, Allowed: r.Allowed(row, p)}
	if res.Allowed.Empty() {
		return res
	}
	res.Location = Pick(res.Allowed, row, g, r.opts.EdgeBand)
	if res.Location == types.DropNone || r.opts.Effect == nil {
		return res
	}
	eff, err := hostcall.Value("get-row-drop-effect", func() (types.DropEffect, error) {
		return r.opts.Effect(row, res.Location, p), nil
	})
	if err == nil {
		res.Effect = eff
	}
	return res
}

// Drop resolves the drop and, when accepted, fires the row-drop
// notification. It reports whether the drop was delivered.
func (r *Resolver) Drop(row *rowstore.Row, g types.Geometry, p types.Payload) (Resolution, bool) {
	res := r.Resolve(row, g, p)
	if !res.Accepted() {
		logger.Debug("dragdrop: rejected", "allowed", res.Allowed.String(), "location", res.Location.String())
		return res, false
	}
	if r.opts.OnDrop != nil {
		ev := Event{Row: row, Location: res.Location, Payload: p, Effect: res.Effect}
		_ = hostcall.Call("row-drop", func() error { r.opts.OnDrop(ev); return nil })
	}
	return res, true
}

// CanDrag reports whether row may start a drag.
func (r *Resolver) CanDrag(row *rowstore.Row) bool {
	if row == nil {
		return false
	}
	if r.opts.AllowDrag != nil {
		var allow, ok bool
		err := hostcall.Call("get-allow-row-drag", func() error {
			allow, ok = r.opts.AllowDrag(row)
			return nil
		})
		if err == nil && ok {
			return allow
		}
	}
	return r.opts.DragDefault
}
