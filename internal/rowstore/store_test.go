package rowstore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/joshuapare/vtree/pkg/types"
)

func items(names ...string) []types.Item {
	out := make([]types.Item, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func names(rows []*Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Item().(string)
	}
	return out
}

// newTestStore builds:
//
//	a
//	  a/1
//	  a/2
//	b
//	c
func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := New("root", opts)
	require.NoError(t, err)
	_, err = s.SetChildren(s.Root(), items("a", "b", "c"))
	require.NoError(t, err)
	a, _ := s.RowFor("a")
	_, err = s.SetChildren(a, items("a/1", "a/2"))
	require.NoError(t, err)
	return s
}

func TestFlattenOnlyExpandedAncestors(t *testing.T) {
	s := newTestStore(t, Options{})
	require.Equal(t, []string{"a", "b", "c"}, names(s.Flatten()))

	a, _ := s.RowFor("a")
	require.NoError(t, s.Expand(a))
	require.Equal(t, []string{"a", "a/1", "a/2", "b", "c"}, names(s.Flatten()))

	a1, _ := s.RowFor("a/1")
	require.Equal(t, 1, a1.Depth())
	require.Equal(t, 0, a.Depth())
}

func TestShowRoot(t *testing.T) {
	s := newTestStore(t, Options{ShowRoot: true})
	require.Equal(t, []string{"root"}, names(s.Flatten()))

	require.NoError(t, s.Expand(s.Root()))
	require.Equal(t, []string{"root", "a", "b", "c"}, names(s.Flatten()))
	b, _ := s.RowFor("b")
	require.Equal(t, 1, b.Depth())
}

func TestVisibleIndexRecomputedLazily(t *testing.T) {
	s := newTestStore(t, Options{})
	c, _ := s.RowFor("c")
	require.Equal(t, 2, c.VisibleIndex())

	a, _ := s.RowFor("a")
	require.NoError(t, s.Expand(a))
	require.True(t, s.dirty, "expand must not rebuild eagerly")
	require.Equal(t, 4, c.VisibleIndex())
	require.False(t, s.dirty)

	a2, _ := s.RowFor("a/2")
	require.Equal(t, 2, a2.VisibleIndex())

	require.NoError(t, s.Collapse(a))
	require.Equal(t, 2, c.VisibleIndex())
	require.Equal(t, -1, a2.VisibleIndex())
}

func TestMutationKeepsPrefixValid(t *testing.T) {
	s := newTestStore(t, Options{})
	s.Flatten()
	b, _ := s.RowFor("b")
	_, err := s.SetChildren(b, items("b/1"))
	require.NoError(t, err)
	require.NoError(t, s.Expand(b))

	require.Equal(t, 2, s.validUpTo, "rows before b keep their positions")
	require.Equal(t, []string{"a", "b", "b/1", "c"}, names(s.Flatten()))
}

func TestCollapseReleasesDescendants(t *testing.T) {
	s := newTestStore(t, Options{ReleaseOnCollapse: true})
	var removed []string
	s.OnRemoved(func(rows []*Row) { removed = append(removed, names(rows)...) })

	a, _ := s.RowFor("a")
	a1, _ := s.RowFor("a/1")
	require.NoError(t, s.Expand(a))
	require.NoError(t, s.Collapse(a))

	require.ElementsMatch(t, []string{"a/1", "a/2"}, removed)
	require.Equal(t, types.Unloaded, a.LoadState())
	require.Zero(t, a.ChildCount())
	require.False(t, a1.Live())
	_, ok := s.RowFor("a/1")
	require.False(t, ok)
}

func TestCollapseRetainsWithoutRelease(t *testing.T) {
	s := newTestStore(t, Options{})
	a, _ := s.RowFor("a")
	require.NoError(t, s.Expand(a))
	require.NoError(t, s.Collapse(a))
	require.Equal(t, types.Loaded, a.LoadState())
	require.Equal(t, 2, a.ChildCount())
}

func TestSetChildrenKeepsExistingRows(t *testing.T) {
	s := newTestStore(t, Options{})
	b, _ := s.RowFor("b")
	s.SetSelected(b, true)

	_, err := s.SetChildren(s.Root(), items("c", "b", "d"))
	require.NoError(t, err)

	b2, _ := s.RowFor("b")
	require.Same(t, b, b2)
	require.True(t, b2.IsSelected())
	_, ok := s.RowFor("a")
	require.False(t, ok)
	require.Equal(t, []string{"c", "b", "d"}, names(s.Flatten()))
}

func TestIsDescendantOf(t *testing.T) {
	s := newTestStore(t, Options{})
	a, _ := s.RowFor("a")
	a1, _ := s.RowFor("a/1")
	b, _ := s.RowFor("b")

	require.True(t, a1.IsDescendantOf(a))
	require.True(t, a1.IsDescendantOf(s.Root()))
	require.False(t, a.IsDescendantOf(a), "a row is not its own descendant")
	require.False(t, a.IsDescendantOf(a1))
	require.False(t, a1.IsDescendantOf(b))
	require.False(t, a1.IsDescendantOf(nil))
}

func TestSetChildrenRejectsDuplicates(t *testing.T) {
	s := newTestStore(t, Options{})
	b, _ := s.RowFor("b")

	_, err := s.SetChildren(b, items("x", "x"))
	require.ErrorIs(t, err, types.ErrDuplicate)

	_, err = s.SetChildren(b, items("a/1"))
	require.ErrorIs(t, err, types.ErrDuplicate)
}

func TestZeroChildrenRetractsAffordance(t *testing.T) {
	s := newTestStore(t, Options{})
	c, _ := s.RowFor("c")
	require.True(t, c.CanExpand())
	_, err := s.SetChildren(c, nil)
	require.NoError(t, err)
	require.False(t, c.CanExpand())
	require.Equal(t, types.Loaded, c.LoadState())
}

func TestHasChildrenHintSeedsAffordance(t *testing.T) {
	s, err := New("root", Options{HasChildren: func(it types.Item) bool { return it == "dir" }})
	require.NoError(t, err)
	rows, err := s.SetChildren(s.Root(), items("dir", "file"))
	require.NoError(t, err)
	require.True(t, rows[0].CanExpand())
	require.False(t, rows[1].CanExpand())
}

func TestInsertAndRemove(t *testing.T) {
	s := newTestStore(t, Options{})
	a, _ := s.RowFor("a")
	require.NoError(t, s.Expand(a))

	r, err := s.InsertChild(a, 1, "a/1.5")
	require.NoError(t, err)
	require.Equal(t, 2, r.VisibleIndex())
	require.Equal(t, []string{"a", "a/1", "a/1.5", "a/2", "b", "c"}, names(s.Flatten()))

	require.NoError(t, s.Remove("a/1"))
	require.Equal(t, []string{"a", "a/1.5", "a/2", "b", "c"}, names(s.Flatten()))
	require.Equal(t, 1, r.VisibleIndex())

	require.ErrorIs(t, s.Remove("zzz"), types.ErrNotFound)
	require.Error(t, s.Remove("root"))

	b, _ := s.RowFor("b")
	r, err = s.InsertChild(b, 0, "b/1")
	require.NoError(t, err)
	require.Nil(t, r, "unloaded parents pick children up on load")
}

func TestRemoveLastChildRetractsAffordance(t *testing.T) {
	s := newTestStore(t, Options{})
	a, _ := s.RowFor("a")
	require.NoError(t, s.Remove("a/1"))
	require.NoError(t, s.Remove("a/2"))
	require.False(t, a.CanExpand())
}

func TestRangeEitherDirection(t *testing.T) {
	s := newTestStore(t, Options{})
	rows, err := s.Range(2, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, names(rows))

	_, err = s.Range(1, 3)
	require.ErrorIs(t, err, types.ErrNotVisible)
}

func TestVisibleIsRestartable(t *testing.T) {
	s := newTestStore(t, Options{})
	seq := s.Visible()
	var first, second []string
	for r := range seq {
		first = append(first, r.Item().(string))
	}
	a, _ := s.RowFor("a")
	require.NoError(t, s.Expand(a))
	for r := range seq {
		second = append(second, r.Item().(string))
	}
	require.Len(t, first, 3)
	require.Len(t, second, 5)
}

func TestFlattenSnapshotIsStable(t *testing.T) {
	s := newTestStore(t, Options{})
	snap := s.Flatten()
	a, _ := s.RowFor("a")
	require.NoError(t, s.Expand(a))
	s.Flatten()
	require.Equal(t, []string{"a", "b", "c"}, names(snap))
}

// TestVisibleIndexProperty checks that after any sequence of expand,
// collapse, insert and remove operations the visible indices are unique,
// contiguous and agree with a from-scratch traversal.
func TestVisibleIndexProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s, err := New("root", Options{ReleaseOnCollapse: rapid.Bool().Draw(t, "release")})
		if err != nil {
			t.Fatal(err)
		}
		next := 0
		fresh := func() types.Item { next++; return next }
		s.SetChildren(s.Root(), []types.Item{fresh(), fresh(), fresh()})

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for range steps {
			all := collect(s)
			r := all[rapid.IntRange(0, len(all)-1).Draw(t, "row")]
			switch rapid.IntRange(0, 4).Draw(t, "op") {
			case 0:
				if r.LoadState() != types.Loaded {
					n := rapid.IntRange(0, 3).Draw(t, "n")
					kids := make([]types.Item, n)
					for i := range kids {
						kids[i] = fresh()
					}
					s.SetChildren(r, kids)
				}
			case 1:
				s.Expand(r)
			case 2:
				s.Collapse(r)
			case 3:
				s.InsertChild(r, rapid.IntRange(0, 3).Draw(t, "at"), fresh())
			case 4:
				if r != s.Root() {
					s.Remove(r.Item())
				}
			}
			if rapid.Bool().Draw(t, "read") {
				s.Flatten()
			}
		}

		want := reference(s)
		got := s.Flatten()
		if len(got) != len(want) {
			t.Fatalf("visible count %d, reference %d", len(got), len(want))
		}
		for i, r := range got {
			if r != want[i] {
				t.Fatalf("position %d: got %v want %v", i, r.Item(), want[i].Item())
			}
			if r.VisibleIndex() != i {
				t.Fatalf("row %v has index %d at position %d", r.Item(), r.VisibleIndex(), i)
			}
		}
		for r := range s.All() {
			if !s.IsVisible(r) && r.VisibleIndex() != -1 {
				t.Fatalf("hidden row %v reports index %d", r.Item(), r.VisibleIndex())
			}
		}
	})
}

func collect(s *Store) []*Row {
	var out []*Row
	for r := range s.All() {
		out = append(out, r)
	}
	return out
}

func reference(s *Store) []*Row {
	var out []*Row
	var walk func(r *Row)
	walk = func(r *Row) {
		for _, c := range r.Children() {
			out = append(out, c)
			if c.IsExpanded() {
				walk(c)
			}
		}
	}
	walk(s.Root())
	return out
}
