// Package source opens the item graphs shown by the vtree binaries. JSON
// documents and SQLite databases are told apart by file extension.
package source

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/pkg/graph/jsonfile"
	"github.com/joshuapare/vtree/pkg/graph/sqlgraph"
	"github.com/joshuapare/vtree/pkg/types"
	"github.com/joshuapare/vtree/pkg/vtree"
)

// Options tune how JSON documents are read.
type Options struct {
	// Sort collates children by name.
	Sort bool
	// Language is the BCP 47 tag used for collation.
	Language string
	// Charset is "utf-8" (default), "windows-1252" or "latin1".
	Charset string
}

// Source is an opened data file together with the binding that displays it.
type Source struct {
	Graph   types.ItemGraph
	Root    types.Item
	Binding *vtree.Binding

	json *jsonfile.Graph
	sql  *sqlgraph.Graph
}

// IsSQLite reports whether path names a SQLite database.
func IsSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Open opens a JSON document or, by extension, a SQLite database.
func Open(ctx context.Context, path string, opts Options) (*Source, error) {
	logger.Debug("source: open", "path", path)
	if IsSQLite(path) {
		return openSQL(ctx, path)
	}
	return openJSON(path, opts)
}

func openJSON(path string, opts Options) (*Source, error) {
	g, err := jsonfile.Load(path, jsonfile.Options{Sort: opts.Sort, Language: opts.Language, Charset: opts.Charset})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return &Source{Graph: g, Root: g.Root(), Binding: jsonBinding(), json: g}, nil
}

func openSQL(ctx context.Context, path string) (*Source, error) {
	g, err := sqlgraph.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	root, err := g.Root(ctx)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Source{Graph: g, Root: root, Binding: sqlBinding(g), sql: g}, nil
}

// JSON returns the document graph, or nil for databases.
func (s *Source) JSON() *jsonfile.Graph { return s.json }

// Close releases the database connection, if any.
func (s *Source) Close() error {
	if s.sql != nil {
		return s.sql.Close()
	}
	return nil
}

// Path returns the slash-separated path of it below the root, "/" for the
// root itself.
func (s *Source) Path(it types.Item) string {
	if s.json != nil {
		return it.(*jsonfile.Node).String()
	}
	var parts []string
	for cur := it; cur != s.Root; {
		rec, err := s.sql.Get(context.Background(), cur.(sqlgraph.ID))
		if err != nil {
			break
		}
		parts = append([]string{rec.Name}, parts...)
		cur = rec.Parent
	}
	return "/" + strings.Join(parts, "/")
}

// Find resolves a path produced by Path.
func (s *Source) Find(ctx context.Context, path string) (types.Item, error) {
	if s.json != nil {
		n, ok := s.json.Find(path)
		if !ok {
			return nil, types.Wrap(types.ErrNotFound, "find", fmt.Errorf("%q", path))
		}
		return n, nil
	}

	cur := s.Root
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" {
			continue
		}
		kids, err := s.sql.Children(ctx, cur)
		if err != nil {
			return nil, err
		}
		var next types.Item
		for _, k := range kids {
			if rec, err := s.sql.Get(ctx, k.(sqlgraph.ID)); err == nil && rec.Name == name {
				next = k
				break
			}
		}
		if next == nil {
			return nil, types.Wrap(types.ErrNotFound, "find", fmt.Errorf("%q", path))
		}
		cur = next
	}
	return cur, nil
}

// Move reparents item under parent at position at.
func (s *Source) Move(ctx context.Context, item, parent types.Item, at int) error {
	if s.json != nil {
		n, ok1 := item.(*jsonfile.Node)
		p, ok2 := parent.(*jsonfile.Node)
		if !ok1 || !ok2 {
			return &types.Error{Kind: types.ErrKindContract, Op: "source move", Msg: "items are not document nodes"}
		}
		return s.json.Move(n, p, at)
	}
	return s.sql.Move(ctx, item.(sqlgraph.ID), parent.(sqlgraph.ID), at)
}

// Watch reports reloads of a JSON document's file through onChange until
// ctx is done. Databases are not watched and return nil immediately.
func (s *Source) Watch(ctx context.Context, debounce time.Duration, onChange func(root types.Item, err error)) error {
	if s.json == nil {
		return nil
	}
	return s.json.Watch(ctx, debounce, func(root *jsonfile.Node, err error) {
		var it types.Item
		if root != nil {
			it = root
		}
		onChange(it, err)
	})
}

// Columns returns a name column and a value column showing field.
func Columns(field string) []*vtree.Column {
	return []*vtree.Column{
		{Name: "name", Caption: "Name", Width: 24, AutoSize: types.AutoSizeIncrease, Sortable: true},
		{Name: "value", Caption: "Value", Field: field, Width: 24, MaxAutoSizeWidth: 60, Sortable: true},
	}
}

func jsonBinding() *vtree.Binding {
	return &vtree.Binding{
		Key: "node",
		CellData: func(r *vtree.Row, c *vtree.Column) (types.CellData, error) {
			n := r.Item().(*jsonfile.Node)
			if c.Field == "" {
				return types.CellData{Text: n.Name}, nil
			}
			v := n.Attr(c.Field)
			if v == nil {
				return types.CellData{}, nil
			}
			return types.CellData{Text: fmt.Sprint(v), Value: v}, nil
		},
		SetValue: func(r *vtree.Row, c *vtree.Column, v any) error {
			n := r.Item().(*jsonfile.Node)
			if c.Field == "" {
				n.Name = fmt.Sprint(v)
				return nil
			}
			if n.Attrs == nil {
				n.Attrs = map[string]any{}
			}
			n.Attrs[c.Field] = v
			return nil
		},
		Compare: func(a, b types.Item, c *vtree.Column) int {
			x, y := a.(*jsonfile.Node), b.(*jsonfile.Node)
			if c.Field == "" {
				return strings.Compare(x.Name, y.Name)
			}
			return compareValues(x.Attr(c.Field), y.Attr(c.Field))
		},
		AllowDrag: true,
	}
}

func sqlBinding(g *sqlgraph.Graph) *vtree.Binding {
	return &vtree.Binding{
		Key: "record",
		CellData: func(r *vtree.Row, c *vtree.Column) (types.CellData, error) {
			rec, err := g.Get(context.Background(), r.Item().(sqlgraph.ID))
			if err != nil {
				return types.CellData{}, err
			}
			if c.Field == "" {
				return types.CellData{Text: rec.Name}, nil
			}
			return types.CellData{Text: rec.Value, Value: rec.Value}, nil
		},
		SetValue: func(r *vtree.Row, c *vtree.Column, v any) error {
			id := r.Item().(sqlgraph.ID)
			if c.Field == "" {
				return g.Rename(context.Background(), id, fmt.Sprint(v))
			}
			return g.SetValue(context.Background(), id, fmt.Sprint(v))
		},
		Compare: func(a, b types.Item, c *vtree.Column) int {
			x, errX := g.Get(context.Background(), a.(sqlgraph.ID))
			y, errY := g.Get(context.Background(), b.(sqlgraph.ID))
			if errX != nil || errY != nil {
				return cmp.Compare(a.(sqlgraph.ID), b.(sqlgraph.ID))
			}
			if c.Field == "" {
				return strings.Compare(x.Name, y.Name)
			}
			return compareValues(x.Value, y.Value)
		},
		AllowDrag: true,
	}
}

// compareValues orders missing values first, numbers numerically and
// everything else by its text.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	x, okX := number(a)
	y, okY := number(b)
	if okX && okY {
		return cmp.Compare(x, y)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
