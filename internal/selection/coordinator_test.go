package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

func newStore(t require.TestingT, n int) *rowstore.Store {
	s, err := rowstore.New("root", rowstore.Options{ReleaseOnCollapse: true})
	require.NoError(t, err)
	items := make([]types.Item, n)
	for i := range items {
		items[i] = i
	}
	_, err = s.SetChildren(s.Root(), items)
	require.NoError(t, err)
	return s
}

func selectedItems(c *Coordinator) []any {
	var out []any
	for _, r := range c.Selected() {
		out = append(out, r.Item())
	}
	return out
}

func TestClearThenClearAndAdd(t *testing.T) {
	s := newStore(t, 8)
	c := New(s, Options{})

	_, err := c.ApplyChange(0, 7, types.SelectAdd)
	require.NoError(t, err)
	ok, err := c.ApplyChange(0, 0, types.SelectClear)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, c.Count())

	ok, err = c.ApplyChange(5, 2, types.SelectClearAndAdd)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []any{2, 3, 4, 5}, selectedItems(c))
	require.True(t, s.RowAt(3).IsSelected())
	require.False(t, s.RowAt(6).IsSelected())
}

func TestAddRemove(t *testing.T) {
	s := newStore(t, 6)
	c := New(s, Options{})
	_, err := c.ApplyChange(0, 3, types.SelectAdd)
	require.NoError(t, err)
	_, err = c.ApplyChange(2, 5, types.SelectRemove)
	require.NoError(t, err)
	require.Equal(t, []any{0, 1}, selectedItems(c))
	require.Equal(t, 2, c.Anchor())
}

func TestVetoedChangeDoesNothing(t *testing.T) {
	s := newStore(t, 5000)
	var events []Event
	c := New(s, Options{OnChanging: func(ev *Event) {
		events = append(events, *ev)
		ev.Cancel = ev.Count > 1000
	}})

	ok, err := c.ApplyChange(0, 4999, types.SelectAdd)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, c.Count())
	require.Len(t, events, 1, "one notification for the whole range")
	require.Equal(t, 5000, events[0].Count)
	require.Equal(t, types.SelectAdd, events[0].Kind)

	ok, err = c.ApplyChange(10, 19, types.SelectAdd)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 10, c.Count())
	require.Len(t, events, 2)
}

func TestPanickingHookCancels(t *testing.T) {
	s := newStore(t, 3)
	c := New(s, Options{OnChanging: func(*Event) { panic("host bug") }})
	ok, err := c.ApplyChange(0, 2, types.SelectAdd)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRangeUsesVisibleOrder(t *testing.T) {
	s := newStore(t, 3)
	r0 := s.RowAt(0)
	_, err := s.SetChildren(r0, []types.Item{"0/a", "0/b"})
	require.NoError(t, err)

	c := New(s, Options{})
	_, err = c.ApplyChange(0, 1, types.SelectAdd)
	require.NoError(t, err)
	require.Equal(t, []any{0, 1}, selectedItems(c), "collapsed children are skipped")

	require.NoError(t, s.Expand(r0))
	_, err = c.ApplyChange(0, 1, types.SelectClearAndAdd)
	require.NoError(t, err)
	require.Equal(t, []any{0, "0/a"}, selectedItems(c))
}

func TestInvisibleRangeIsContractError(t *testing.T) {
	s := newStore(t, 3)
	c := New(s, Options{})
	_, err := c.ApplyChange(1, 3, types.SelectAdd)
	require.ErrorIs(t, err, types.ErrNotVisible)
	_, err = c.ApplyChange(0, 0, types.SelectionChange(42))
	require.Error(t, err)
}

func TestSingleSelect(t *testing.T) {
	s := newStore(t, 3)
	c := New(s, Options{SingleSelect: true})
	_, err := c.ApplyChange(0, 1, types.SelectClearAndAdd)
	require.Error(t, err)
	ok, err := c.ApplyChange(1, 1, types.SelectClearAndAdd)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = c.ApplyChange(2, 2, types.SelectAdd)
	require.Error(t, err)
}

func TestRemovedRowsLeaveSelection(t *testing.T) {
	s := newStore(t, 4)
	c := New(s, Options{})
	s.OnRemoved(c.DropRows)
	_, err := c.ApplyChange(0, 3, types.SelectAdd)
	require.NoError(t, err)
	require.NoError(t, s.Remove(2))
	require.Equal(t, 3, c.Count())
	require.Equal(t, []any{0, 1, 3}, selectedItems(c))
}

func TestRowsRemovedByHandlerAreNotSelected(t *testing.T) {
	s := newStore(t, 4)
	c := New(s, Options{OnChanging: func(*Event) {
		require.NoError(t, s.Remove(2))
	}})
	s.OnRemoved(c.DropRows)

	ok, err := c.ApplyChange(0, 3, types.SelectAdd)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []any{0, 1, 3}, selectedItems(c))
	require.Equal(t, 3, c.Count())
}

func TestOnChanged(t *testing.T) {
	s := newStore(t, 4)
	var got []int
	c := New(s, Options{OnChanged: func(_ types.SelectionChange, n int) { got = append(got, n) }})
	_, _ = c.ApplyChange(0, 1, types.SelectAdd)
	_, _ = c.ApplyChange(0, 0, types.SelectClear)
	require.Equal(t, []int{2, 0}, got)
}

// TestSelectionMatchesModel replays random change sequences against a
// plain set model.
func TestSelectionMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		s := newStore(t, n)
		c := New(s, Options{})
		model := map[int]bool{}

		for range rapid.IntRange(1, 30).Draw(t, "steps") {
			a := rapid.IntRange(0, n-1).Draw(t, "a")
			b := rapid.IntRange(0, n-1).Draw(t, "b")
			kind := types.SelectionChange(rapid.IntRange(0, 3).Draw(t, "kind"))
			if _, err := c.ApplyChange(a, b, kind); err != nil {
				t.Fatalf("apply: %v", err)
			}
			lo, hi := min(a, b), max(a, b)
			switch kind {
			case types.SelectClear:
				clear(model)
			case types.SelectAdd:
				for i := lo; i <= hi; i++ {
					model[i] = true
				}
			case types.SelectRemove:
				for i := lo; i <= hi; i++ {
					delete(model, i)
				}
			case types.SelectClearAndAdd:
				clear(model)
				for i := lo; i <= hi; i++ {
					model[i] = true
				}
			}
		}

		if c.Count() != len(model) {
			t.Fatalf("count %d, model %d", c.Count(), len(model))
		}
		for i := range n {
			if s.RowAt(i).IsSelected() != model[i] {
				t.Fatalf("row %d selected=%v, model=%v", i, s.RowAt(i).IsSelected(), model[i])
			}
		}
	})
}
