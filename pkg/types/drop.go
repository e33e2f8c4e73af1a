package types

import "strings"

// DropLocation is a bitset of places relative to a row where a drop may land.
type DropLocation uint8

const (
	DropNone          DropLocation = 0
	DropOnRow         DropLocation = 1 << 0
	DropAboveRow      DropLocation = 1 << 1
	DropBelowRow      DropLocation = 1 << 2
	DropEmptyRowSpace DropLocation = 1 << 3

	// DropAll is every location.
	DropAll = DropOnRow | DropAboveRow | DropBelowRow | DropEmptyRowSpace
)

// Has reports whether every bit of loc is set in d.
func (d DropLocation) Has(loc DropLocation) bool { return loc != DropNone && d&loc == loc }

// Union returns d with the bits of o added.
func (d DropLocation) Union(o DropLocation) DropLocation { return d | o }

// Intersect returns the bits common to d and o.
func (d DropLocation) Intersect(o DropLocation) DropLocation { return d & o }

// Without returns d with the bits of o cleared.
func (d DropLocation) Without(o DropLocation) DropLocation { return d &^ o }

// Empty reports whether no location is set.
func (d DropLocation) Empty() bool { return d&DropAll == 0 }

func (d DropLocation) String() string {
	if d.Empty() {
		return "none"
	}
	var parts []string
	if d.Has(DropOnRow) {
		parts = append(parts, "on")
	}
	if d.Has(DropAboveRow) {
		parts = append(parts, "above")
	}
	if d.Has(DropBelowRow) {
		parts = append(parts, "below")
	}
	if d.Has(DropEmptyRowSpace) {
		parts = append(parts, "empty")
	}
	return strings.Join(parts, "|")
}

// DropEffect is the operation a drop would perform.
type DropEffect int

const (
	EffectNone DropEffect = iota
	EffectCopy
	EffectMove
	EffectLink
)

func (e DropEffect) String() string {
	switch e {
	case EffectCopy:
		return "copy"
	case EffectMove:
		return "move"
	case EffectLink:
		return "link"
	default:
		return "none"
	}
}

// Payload is the data being dragged. Format is matched against the formats
// a binding accepts.
type Payload struct {
	Format string
	Data   any
	Source Item // dragged item, nil for external payloads
}

// Geometry is the pointer position relative to the row under it. It is
// ignored when the pointer is over the empty space below the last row.
type Geometry struct {
	// Y is the pointer offset from the row's top edge.
	Y float64
	// Height is the row height.
	Height float64
}
