package childload

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

type fakeGraph struct {
	children map[string][]string
	fail     map[string]error
	panics   map[string]bool
	calls    map[string]int
	during   func(item string)
}

func newFakeGraph(children map[string][]string) *fakeGraph {
	return &fakeGraph{
		children: children,
		fail:     map[string]error{},
		panics:   map[string]bool{},
		calls:    map[string]int{},
	}
}

func (g *fakeGraph) Children(_ context.Context, item types.Item) ([]types.Item, error) {
	name := item.(string)
	g.calls[name]++
	if g.during != nil {
		g.during(name)
	}
	if g.panics[name] {
		panic("adapter bug")
	}
	if err := g.fail[name]; err != nil {
		return nil, err
	}
	var out []types.Item
	for _, c := range g.children[name] {
		out = append(out, c)
	}
	return out, nil
}

func (g *fakeGraph) Parent(types.Item) (types.Item, bool) { return nil, false }

func setup(t *testing.T, g *fakeGraph, opts Options) (*rowstore.Store, *Engine) {
	t.Helper()
	s, err := rowstore.New("root", rowstore.Options{ReleaseOnCollapse: true})
	require.NoError(t, err)
	e := New(s, g, opts)
	require.NoError(t, e.EnsureLoaded(t.Context(), s.Root()))
	return s, e
}

func row(t *testing.T, s *rowstore.Store, item string) *rowstore.Row {
	t.Helper()
	r, ok := s.RowFor(item)
	require.True(t, ok, "no row for %s", item)
	return r
}

func TestPolicyResolutionOrder(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a", "b", "c"}})
	_, e := setup(t, g, Options{
		DefaultPolicy: types.PolicyNormal,
		PolicyHook: func(r *rowstore.Row) (types.ChildPolicy, bool) {
			if r.Item() == "c" {
				return 0, false
			}
			return types.PolicyAutoExpand, true
		},
	})
	s := e.store
	a, b, c := row(t, s, "a"), row(t, s, "b"), row(t, s, "c")
	a.SetPolicyOverride(types.PolicyLoadOnExpand)

	require.Equal(t, types.PolicyLoadOnExpand, e.Policy(a), "override beats hook")
	require.Equal(t, types.PolicyAutoExpand, e.Policy(b), "hook beats default")
	require.Equal(t, types.PolicyNormal, e.Policy(c), "default when hook declines")

	e.SetDefaultPolicy(types.PolicyLoadOnExpand)
	require.Equal(t, types.PolicyLoadOnExpand, e.Policy(c))
}

func TestBindingPolicyAfterHook(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a", "b"}})
	s, e := setup(t, g, Options{
		PolicyHook: func(r *rowstore.Row) (types.ChildPolicy, bool) {
			return types.PolicyAutoExpand, r.Item() == "a"
		},
		BindingPolicy: func(*rowstore.Row) (types.ChildPolicy, bool) { return types.PolicyLoadOnExpand, true },
	})
	require.Equal(t, types.PolicyAutoExpand, e.Policy(row(t, s, "a")))
	require.Equal(t, types.PolicyLoadOnExpand, e.Policy(row(t, s, "b")))
}

func TestPanickingPolicyHookFallsBack(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}})
	s, e := setup(t, g, Options{
		DefaultPolicy: types.PolicyLoadOnExpand,
		PolicyHook:    func(*rowstore.Row) (types.ChildPolicy, bool) { panic("host bug") },
	})
	require.Equal(t, types.PolicyLoadOnExpand, e.Policy(row(t, s, "a")))
}

func TestNormalLoadsOnDisplay(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}, "a": {"a/1"}})
	s, e := setup(t, g, Options{})
	a := row(t, s, "a")

	changed, err := e.OnDisplay(t.Context(), a)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, types.Loaded, a.LoadState())
	require.False(t, a.IsExpanded())
	require.Equal(t, 1, a.ChildCount())

	_, err = e.OnDisplay(t.Context(), a)
	require.NoError(t, err)
	require.Equal(t, 1, g.calls["a"], "loads once")
}

func TestAutoExpandExpandsWhenChildrenExist(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a", "b"}, "a": {"a/1"}})
	s, e := setup(t, g, Options{DefaultPolicy: types.PolicyAutoExpand})

	changed, err := e.OnDisplay(t.Context(), row(t, s, "a"))
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, row(t, s, "a").IsExpanded())

	changed, err = e.OnDisplay(t.Context(), row(t, s, "b"))
	require.NoError(t, err)
	require.False(t, changed)
	require.False(t, row(t, s, "b").IsExpanded())
	require.False(t, row(t, s, "b").CanExpand())
}

func TestLoadOnExpandDefersUntilExpand(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}, "a": {"a/1", "a/2"}})
	s, e := setup(t, g, Options{DefaultPolicy: types.PolicyLoadOnExpand})
	a := row(t, s, "a")

	_, err := e.OnDisplay(t.Context(), a)
	require.NoError(t, err)
	require.Equal(t, types.Unloaded, a.LoadState())
	require.Zero(t, g.calls["a"])
	require.True(t, a.CanExpand())

	ok, err := e.Expand(t.Context(), a)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Loaded, a.LoadState())
	require.Equal(t, 3, s.VisibleCount())
}

func TestLoadOnExpandZeroChildrenRetractsAffordance(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}})
	s, e := setup(t, g, Options{DefaultPolicy: types.PolicyLoadOnExpand})
	a := row(t, s, "a")

	ok, err := e.Expand(t.Context(), a)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, a.CanExpand())
	require.False(t, a.IsExpanded())
	require.Equal(t, types.Loaded, a.LoadState())

	ok, err = e.Expand(t.Context(), a)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, g.calls["a"], "no reload without new data")
}

func TestAdapterFailureLeavesRowUnloaded(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}})
	g.fail["a"] = errors.New("timeout")
	var reported error
	s, e := setup(t, g, Options{OnLoaded: func(_ *rowstore.Row, err error) { reported = err }})
	a := row(t, s, "a")

	_, err := e.OnDisplay(t.Context(), a)
	require.ErrorIs(t, err, types.ErrAdapter)
	require.Equal(t, types.Unloaded, a.LoadState())
	require.Error(t, a.LoadErr())
	require.ErrorIs(t, reported, types.ErrAdapter)

	_, err = e.OnDisplay(t.Context(), a)
	require.NoError(t, err)
	require.Equal(t, 1, g.calls["a"], "display does not retry")

	delete(g.fail, "a")
	g.children["a"] = []string{"a/1"}
	ok, err := e.Expand(t.Context(), a)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, a.LoadErr())
}

func TestAdapterPanicIsContained(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}})
	g.panics["a"] = true
	s, e := setup(t, g, Options{})

	_, err := e.OnDisplay(t.Context(), row(t, s, "a"))
	require.ErrorIs(t, err, types.ErrAdapter)
	require.ErrorIs(t, err, types.ErrCallback)
}

func TestReentrantLoadIsNoop(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}, "a": {"a/1"}})
	s, e := setup(t, g, Options{})
	a := row(t, s, "a")
	g.during = func(item string) {
		if item == "a" {
			require.Equal(t, types.Loading, a.LoadState())
			require.NoError(t, e.Reload(context.Background(), a))
		}
	}

	require.NoError(t, e.Reload(t.Context(), a))
	require.Equal(t, 1, g.calls["a"])
}

func TestRowRemovedDuringLoad(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}, "a": {"a/1"}})
	s, e := setup(t, g, Options{})
	a := row(t, s, "a")
	g.during = func(item string) {
		if item == "a" {
			require.NoError(t, s.Remove("a"))
		}
	}
	require.NoError(t, e.Reload(t.Context(), a))
	_, ok := s.RowFor("a/1")
	require.False(t, ok)
}

func TestExpandAll(t *testing.T) {
	g := newFakeGraph(map[string][]string{
		"root": {"a", "b"},
		"a":    {"a/1", "a/2"},
		"a/1":  {"a/1/x"},
		"b":    {"b/1"},
	})
	s, e := setup(t, g, Options{DefaultPolicy: types.PolicyLoadOnExpand})

	require.NoError(t, e.ExpandAll(t.Context(), s.Root(), -1))
	require.Equal(t, 5, s.VisibleCount())

	require.NoError(t, e.Collapse(row(t, s, "a")))
	require.NoError(t, e.Collapse(row(t, s, "b")))
	require.NoError(t, e.ExpandAll(t.Context(), row(t, s, "a"), 0))
	require.Equal(t, 4, s.VisibleCount(), "a plus its two children, then b")
}

func TestToggle(t *testing.T) {
	g := newFakeGraph(map[string][]string{"root": {"a"}, "a": {"a/1"}})
	s, e := setup(t, g, Options{})
	a := row(t, s, "a")

	on, err := e.Toggle(t.Context(), a)
	require.NoError(t, err)
	require.True(t, on)
	on, err = e.Toggle(t.Context(), a)
	require.NoError(t, err)
	require.False(t, on)
	require.Equal(t, types.Unloaded, a.LoadState(), "released on collapse")
}

func itemNames(rows []*rowstore.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Item().(string)
	}
	return out
}

func TestOrderArrangesChildren(t *testing.T) {
	g := newFakeGraph(map[string][]string{
		"root": {"b", "a", "c"},
		"a":    {"a2", "a1"},
	})
	desc := false
	s, e := setup(t, g, Options{
		DefaultPolicy: types.PolicyLoadOnExpand,
		Order: func(_ *rowstore.Row, items []types.Item) []types.Item {
			out := append([]types.Item(nil), items...)
			slices.SortFunc(out, func(x, y types.Item) int {
				if desc {
					return strings.Compare(y.(string), x.(string))
				}
				return strings.Compare(x.(string), y.(string))
			})
			return out
		},
	})
	require.Equal(t, []string{"a", "b", "c"}, itemNames(s.Root().Children()))

	a := row(t, s, "a")
	_, err := e.Expand(t.Context(), a)
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "a2"}, itemNames(a.Children()))

	desc = true
	require.NoError(t, e.UpdateChildren(t.Context(), s.Root(), false, true))
	require.Equal(t, []string{"c", "b", "a"}, itemNames(s.Root().Children()))
	require.Equal(t, []string{"a2", "a1"}, itemNames(a.Children()))
	require.Same(t, a, row(t, s, "a"), "rearranging keeps rows")
	require.True(t, a.IsExpanded())
	require.Equal(t, 1, g.calls["a"], "rearranging does not reload")
}

func TestUpdateChildrenReloads(t *testing.T) {
	g := newFakeGraph(map[string][]string{
		"root": {"a", "b"},
		"a":    {"a1"},
	})
	s, e := setup(t, g, Options{DefaultPolicy: types.PolicyLoadOnExpand})
	_, err := e.Expand(t.Context(), row(t, s, "a"))
	require.NoError(t, err)

	g.children["a"] = []string{"a1", "a2"}
	g.children["root"] = []string{"a", "b", "c"}

	require.NoError(t, e.UpdateChildren(t.Context(), s.Root(), true, false))
	require.Equal(t, []string{"a", "b", "c"}, itemNames(s.Root().Children()))
	require.Len(t, row(t, s, "a").Children(), 1, "not recursive")

	require.NoError(t, e.UpdateChildren(t.Context(), s.Root(), true, true))
	require.Equal(t, []string{"a1", "a2"}, itemNames(row(t, s, "a").Children()))
	require.Zero(t, g.calls["b"], "unloaded rows are skipped")

	dead := row(t, s, "a2")
	require.NoError(t, s.Remove("a2"))
	require.ErrorIs(t, e.UpdateChildren(t.Context(), dead, true, false), types.ErrNotFound)
}

func TestCollapseChildren(t *testing.T) {
	g := newFakeGraph(map[string][]string{
		"root": {"a", "b"},
		"a":    {"a1"},
		"a1":   {"x"},
		"b":    {"b1"},
	})
	s, err := rowstore.New("root", rowstore.Options{})
	require.NoError(t, err)
	e := New(s, g, Options{DefaultPolicy: types.PolicyLoadOnExpand})
	require.NoError(t, e.EnsureLoaded(t.Context(), s.Root()))
	require.NoError(t, e.ExpandAll(t.Context(), s.Root(), -1))
	require.Equal(t, 5, s.VisibleCount())

	require.NoError(t, e.CollapseChildren(s.Root(), false))
	require.Equal(t, 2, s.VisibleCount())
	require.True(t, row(t, s, "a1").IsExpanded(), "non-recursive leaves grandchildren alone")

	require.NoError(t, e.CollapseChildren(s.Root(), true))
	require.False(t, row(t, s, "a1").IsExpanded())
	require.False(t, row(t, s, "a").IsExpanded())
}
