package dragdrop

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

func rows(t *testing.T) (*rowstore.Store, map[string]*rowstore.Row) {
	t.Helper()
	s, err := rowstore.New("root", rowstore.Options{})
	require.NoError(t, err)
	_, err = s.SetChildren(s.Root(), []types.Item{"folder", "file"})
	require.NoError(t, err)
	folder, _ := s.RowFor("folder")
	_, err = s.SetChildren(folder, []types.Item{"folder/sub"})
	require.NoError(t, err)
	out := map[string]*rowstore.Row{}
	for r := range s.All() {
		out[r.Item().(string)] = r
	}
	return s, out
}

func move(*rowstore.Row, types.DropLocation, types.Payload) types.DropEffect { return types.EffectMove }

var payload = types.Payload{Format: "item"}

func at(y float64) types.Geometry { return types.Geometry{Y: y, Height: 20} }

func TestPickGeometry(t *testing.T) {
	_, r := rows(t)
	row := r["file"]
	all := types.DropOnRow | types.DropAboveRow | types.DropBelowRow
	tests := []struct {
		name    string
		allowed types.DropLocation
		y       float64
		want    types.DropLocation
	}{
		{"top band", all, 2, types.DropAboveRow},
		{"middle", all, 10, types.DropOnRow},
		{"bottom band", all, 18, types.DropBelowRow},
		{"band edge favours on", all, 5, types.DropOnRow},
		{"lower band edge favours on", all, 15, types.DropOnRow},
		{"on only", types.DropOnRow, 1, types.DropOnRow},
		{"above below nearest top", types.DropAboveRow | types.DropBelowRow, 9, types.DropAboveRow},
		{"above below nearest bottom", types.DropAboveRow | types.DropBelowRow, 11, types.DropBelowRow},
		{"above below midpoint", types.DropAboveRow | types.DropBelowRow, 10, types.DropAboveRow},
		{"below only", types.DropBelowRow, 0, types.DropBelowRow},
		{"on and below near top", types.DropOnRow | types.DropBelowRow, 1, types.DropOnRow},
		{"empty", types.DropNone, 10, types.DropNone},
		{"clamped", all, -40, types.DropAboveRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Pick(tt.allowed, row, at(tt.y), DefaultEdgeBand))
		})
	}

	require.Equal(t, types.DropEmptyRowSpace, Pick(types.DropEmptyRowSpace, nil, types.Geometry{}, DefaultEdgeBand))
	require.Equal(t, types.DropNone, Pick(types.DropOnRow, nil, types.Geometry{}, DefaultEdgeBand))
}

func TestAllowedCombinesDefaultsOverrideAndFormats(t *testing.T) {
	s, r := rows(t)
	res := New(s, Options{
		Defaults: func(row *rowstore.Row) types.DropLocation {
			if row.Item() == "folder" {
				return types.DropOnRow | types.DropAboveRow | types.DropBelowRow
			}
			return types.DropAboveRow | types.DropBelowRow
		},
		Override: func(row *rowstore.Row, _ types.Payload, allowed types.DropLocation) types.DropLocation {
			if row != nil && row.Item() == "folder/sub" {
				return allowed.Union(types.DropOnRow)
			}
			return allowed
		},
		Formats: func(row *rowstore.Row) []string {
			if row.Item() == "file" {
				return []string{"text"}
			}
			return []string{"item", "text"}
		},
	})

	require.Equal(t, types.DropOnRow|types.DropAboveRow|types.DropBelowRow, res.Allowed(r["folder"], payload))
	require.Equal(t, types.DropOnRow|types.DropAboveRow|types.DropBelowRow, res.Allowed(r["folder/sub"], payload), "override widens")
	require.Equal(t, types.DropNone, res.Allowed(r["file"], payload), "format mismatch")
	require.Equal(t, types.DropAboveRow|types.DropBelowRow, res.Allowed(r["file"], types.Payload{Format: "text"}))
}

func TestEmptyAllowedSetForcesNone(t *testing.T) {
	s, r := rows(t)
	calls := 0
	var delivered []Event
	res := New(s, Options{
		Override: func(*rowstore.Row, types.Payload, types.DropLocation) types.DropLocation { return types.DropNone },
		Effect: func(*rowstore.Row, types.DropLocation, types.Payload) types.DropEffect {
			calls++
			return types.EffectCopy
		},
		OnDrop: func(ev Event) { delivered = append(delivered, ev) },
	})

	got := res.Resolve(r["file"], at(10), payload)
	require.Equal(t, types.DropNone, got.Location)
	require.Equal(t, types.EffectNone, got.Effect)
	require.Zero(t, calls)

	_, ok := res.Drop(r["file"], at(10), payload)
	require.False(t, ok)
	require.Empty(t, delivered)
}

func TestEffectDefaultsToNone(t *testing.T) {
	s, r := rows(t)
	res := New(s, Options{})
	got := res.Resolve(r["file"], at(10), payload)
	require.Equal(t, types.DropOnRow, got.Location)
	require.Equal(t, types.EffectNone, got.Effect)
	require.False(t, got.Accepted())
}

func TestDropDeliversOnce(t *testing.T) {
	s, r := rows(t)
	var delivered []Event
	res := New(s, Options{Effect: move, OnDrop: func(ev Event) { delivered = append(delivered, ev) }})

	got, ok := res.Drop(r["folder"], at(19), types.Payload{Format: "item", Source: "file"})
	require.True(t, ok)
	require.Equal(t, types.DropBelowRow, got.Location)
	require.Len(t, delivered, 1)
	require.Equal(t, types.EffectMove, delivered[0].Effect)
	require.Same(t, r["folder"], delivered[0].Row)
	require.Equal(t, "file", delivered[0].Payload.Source)
}

func TestCannotDropOntoSelfOrDescendant(t *testing.T) {
	s, r := rows(t)
	res := New(s, Options{Effect: move})
	src := types.Payload{Format: "item", Source: "folder"}
	require.Equal(t, types.DropNone, res.Allowed(r["folder"], src))
	require.Equal(t, types.DropNone, res.Allowed(r["folder/sub"], src))
	require.NotEqual(t, types.DropNone, res.Allowed(r["file"], src))
}

func TestEmptySpace(t *testing.T) {
	s, _ := rows(t)
	res := New(s, Options{Effect: move})
	require.Equal(t, types.DropNone, res.Allowed(nil, payload))

	res = New(s, Options{Effect: move, AllowEmptySpace: true})
	got, ok := res.Drop(nil, types.Geometry{}, payload)
	require.True(t, ok)
	require.Equal(t, types.DropEmptyRowSpace, got.Location)
}

func TestPanickingHooksReject(t *testing.T) {
	s, r := rows(t)
	res := New(s, Options{
		Override: func(*rowstore.Row, types.Payload, types.DropLocation) types.DropLocation { panic("bug") },
		Effect:   move,
	})
	_, ok := res.Drop(r["file"], at(10), payload)
	require.False(t, ok)

	res = New(s, Options{Effect: func(*rowstore.Row, types.DropLocation, types.Payload) types.DropEffect { panic("bug") }})
	got := res.Resolve(r["file"], at(10), payload)
	require.Equal(t, types.DropOnRow, got.Location)
	require.Equal(t, types.EffectNone, got.Effect)
}

func TestCanDrag(t *testing.T) {
	s, r := rows(t)
	res := New(s, Options{DragDefault: true, AllowDrag: func(row *rowstore.Row) (bool, bool) {
		if row.Item() == "folder" {
			return false, true
		}
		return false, false
	}})
	require.False(t, res.CanDrag(r["folder"]))
	require.True(t, res.CanDrag(r["file"]))
	require.False(t, res.CanDrag(nil))
}
