package sqlgraph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/vtree/pkg/types"
)

func openTest(t *testing.T) *Graph {
	t.Helper()
	g, err := Open(context.Background(), filepath.Join(t.TempDir(), "tree.db"))
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

// seed builds root -> {a -> {a1, a2}, b}.
func seed(t *testing.T, g *Graph) map[string]ID {
	t.Helper()
	ctx := context.Background()
	ids := map[string]ID{}
	var err error
	ids["root"], err = g.Insert(ctx, 0, "root", "")
	require.NoError(t, err)
	ids["a"], err = g.Insert(ctx, ids["root"], "a", "1")
	require.NoError(t, err)
	ids["b"], err = g.Insert(ctx, ids["root"], "b", "2")
	require.NoError(t, err)
	ids["a1"], err = g.Insert(ctx, ids["a"], "a1", "")
	require.NoError(t, err)
	ids["a2"], err = g.Insert(ctx, ids["a"], "a2", "")
	require.NoError(t, err)
	return ids
}

func TestChildrenInPositionOrder(t *testing.T) {
	g := openTest(t)
	ids := seed(t, g)
	ctx := context.Background()

	root, err := g.Root(ctx)
	require.NoError(t, err)
	require.Equal(t, ids["root"], root)

	kids, err := g.Children(ctx, root)
	require.NoError(t, err)
	require.Equal(t, []types.Item{ids["a"], ids["b"]}, kids)

	leaf, err := g.Children(ctx, ids["b"])
	require.NoError(t, err)
	require.Empty(t, leaf)
}

func TestParentAndHasChildren(t *testing.T) {
	g := openTest(t)
	ids := seed(t, g)

	p, ok := g.Parent(ids["a1"])
	require.True(t, ok)
	require.Equal(t, ids["a"], p)

	_, ok = g.Parent(ids["root"])
	require.False(t, ok)
	_, ok = g.Parent("a1")
	require.False(t, ok)

	require.True(t, g.HasChildren(ids["a"]))
	require.False(t, g.HasChildren(ids["b"]))
}

func TestEmptyDatabaseHasNoRoot(t *testing.T) {
	g := openTest(t)
	_, err := g.Root(context.Background())
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetSetRename(t *testing.T) {
	g := openTest(t)
	ids := seed(t, g)
	ctx := context.Background()

	require.NoError(t, g.SetValue(ctx, ids["a"], "42"))
	require.NoError(t, g.Rename(ctx, ids["a"], "alpha"))
	rec, err := g.Get(ctx, ids["a"])
	require.NoError(t, err)
	require.Equal(t, Record{ID: ids["a"], Parent: ids["root"], Name: "alpha", Value: "42", Position: 0}, rec)

	_, err = g.Get(ctx, 999)
	require.ErrorIs(t, err, types.ErrNotFound)
	require.ErrorIs(t, g.SetValue(ctx, 999, "x"), types.ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	g := openTest(t)
	ids := seed(t, g)
	ctx := context.Background()

	require.NoError(t, g.Delete(ctx, ids["a"]))
	n, err := g.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestMove(t *testing.T) {
	g := openTest(t)
	ids := seed(t, g)
	ctx := context.Background()

	require.NoError(t, g.Move(ctx, ids["b"], ids["a"], 1))
	kids, err := g.Children(ctx, ids["a"])
	require.NoError(t, err)
	require.Equal(t, []types.Item{ids["a1"], ids["b"], ids["a2"]}, kids)

	err = g.Move(ctx, ids["a"], ids["a1"], 0)
	require.True(t, types.IsKind(err, types.ErrKindContract), "%v", err)

	// Unchanged after the rejected move.
	p, ok := g.Parent(ids["a"])
	require.True(t, ok)
	require.Equal(t, ids["root"], p)
}

func TestChildrenRejectsForeignItems(t *testing.T) {
	g := openTest(t)
	_, err := g.Children(context.Background(), "root")
	require.True(t, types.IsKind(err, types.ErrKindContract), "%v", err)
}
