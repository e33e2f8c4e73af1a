// Package jsonfile is an item graph backed by a JSON document of nested
// nodes:
//
//	{"name": "root", "children": [{"name": "a", "attrs": {"size": 3}}]}
//
// Children can be ordered with locale-aware collation, legacy 8-bit files
// are decoded to UTF-8, and Watch reloads the document when it changes on
// disk.
package jsonfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"

	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/pkg/types"
)

// Options configures decoding and ordering.
type Options struct {
	// Sort orders children by name using the collation of Language.
	Sort bool
	// Language is a BCP 47 tag for collation. Default: "und".
	Language string
	// Charset is "utf-8" (default), "windows-1252" or "latin1".
	Charset string
}

// Graph is a loaded JSON tree. It is safe for concurrent use; Reload swaps
// in a new set of nodes, so items from an older load stay valid but are no
// longer reachable from Root.
type Graph struct {
	path string
	opts Options

	mu    sync.RWMutex
	root  *Node
	count int

	collator *collate.Collator
	group    singleflight.Group
}

// Load reads and parses the document at path.
func Load(path string, opts Options) (*Graph, error) {
	g, err := newGraph(opts)
	if err != nil {
		return nil, err
	}
	g.path = path
	root, count, err := g.read()
	if err != nil {
		return nil, err
	}
	g.root, g.count = root, count
	return g, nil
}

// Parse builds a graph from an in-memory document. Such a graph cannot be
// reloaded or watched.
func Parse(data []byte, opts Options) (*Graph, error) {
	g, err := newGraph(opts)
	if err != nil {
		return nil, err
	}
	root, count, err := g.decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	g.root, g.count = root, count
	return g, nil
}

func newGraph(opts Options) (*Graph, error) {
	g := &Graph{opts: opts}
	if opts.Sort {
		tag := language.Und
		if opts.Language != "" {
			t, err := language.Parse(opts.Language)
			if err != nil {
				return nil, &types.Error{Kind: types.ErrKindConfig, Op: "jsonfile", Msg: "bad language tag", Err: err}
			}
			tag = t
		}
		g.collator = collate.New(tag, collate.IgnoreCase)
	}
	switch strings.ToLower(opts.Charset) {
	case "", "utf-8", "utf8", "windows-1252", "cp1252", "latin1", "iso-8859-1":
	default:
		return nil, &types.Error{Kind: types.ErrKindConfig, Op: "jsonfile", Msg: fmt.Sprintf("unsupported charset %q", opts.Charset)}
	}
	return g, nil
}

func (g *Graph) reader(r io.Reader) io.Reader {
	switch strings.ToLower(g.opts.Charset) {
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	return r
}

func (g *Graph) decode(r io.Reader) (*Node, int, error) {
	var root Node
	if err := json.NewDecoder(g.reader(r)).Decode(&root); err != nil {
		return nil, 0, types.Wrap(types.ErrAdapter, "jsonfile decode", err)
	}
	return &root, link(&root), nil
}

func (g *Graph) read() (*Node, int, error) {
	f, err := os.Open(g.path)
	if err != nil {
		return nil, 0, types.Wrap(types.ErrAdapter, "jsonfile open", err)
	}
	defer f.Close()
	return g.decode(f)
}

// Path returns the backing file, "" for parsed graphs.
func (g *Graph) Path() string { return g.path }

// Root returns the current root node.
func (g *Graph) Root() *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.root
}

// Count returns the number of nodes in the current document.
func (g *Graph) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.count
}

func asNode(op string, it types.Item) (*Node, error) {
	n, ok := it.(*Node)
	if !ok || n == nil {
		return nil, &types.Error{Kind: types.ErrKindContract, Op: op, Msg: fmt.Sprintf("item %T is not a *jsonfile.Node", it)}
	}
	return n, nil
}

// Children returns the children of a *Node, collated when Sort is set.
func (g *Graph) Children(ctx context.Context, it types.Item) ([]types.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := asNode("jsonfile children", it)
	if err != nil {
		return nil, err
	}
	kids := n.Children
	if g.collator != nil {
		kids = slices.Clone(kids)
		slices.SortStableFunc(kids, func(a, b *Node) int {
			return g.collator.CompareString(a.Name, b.Name)
		})
	}
	out := make([]types.Item, len(kids))
	for i, k := range kids {
		out[i] = k
	}
	return out, nil
}

// Parent implements get-parent.
func (g *Graph) Parent(it types.Item) (types.Item, bool) {
	n, ok := it.(*Node)
	if !ok || n == nil || n.parent == nil {
		return nil, false
	}
	return n.parent, true
}

// HasChildren reports whether a node has children without copying them.
func (g *Graph) HasChildren(it types.Item) bool {
	n, ok := it.(*Node)
	return ok && n != nil && len(n.Children) > 0
}

// Find resolves a slash-separated path of names from the root.
func (g *Graph) Find(path string) (*Node, bool) {
	n := g.Root()
	path = strings.Trim(path, "/")
	if path == "" {
		return n, true
	}
	for _, name := range strings.Split(path, "/") {
		idx := slices.IndexFunc(n.Children, func(c *Node) bool { return c.Name == name })
		if idx < 0 {
			return nil, false
		}
		n = n.Children[idx]
	}
	return n, true
}

// Reload re-reads the backing file. Concurrent calls share one read.
func (g *Graph) Reload(ctx context.Context) (*Node, error) {
	if g.path == "" {
		return nil, &types.Error{Kind: types.ErrKindState, Op: "jsonfile reload", Msg: "graph has no backing file"}
	}
	ch := g.group.DoChan("reload", func() (any, error) {
		root, count, err := g.read()
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.root, g.count = root, count
		g.mu.Unlock()
		logger.Debug("jsonfile: reloaded", "path", g.path, "nodes", count)
		return root, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Node), nil
	}
}

// Move detaches n and inserts it among parent's children at index at,
// counted after n was removed and clamped to the valid range. Moving the
// root or moving a node below itself is rejected.
func (g *Graph) Move(n, parent *Node, at int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n == nil || parent == nil || n.parent == nil {
		return &types.Error{Kind: types.ErrKindContract, Op: "jsonfile move", Msg: "cannot move the root"}
	}
	for p := parent; p != nil; p = p.parent {
		if p == n {
			return &types.Error{Kind: types.ErrKindContract, Op: "jsonfile move", Msg: fmt.Sprintf("%s cannot move below itself", n)}
		}
	}

	old := n.parent
	if i := slices.Index(old.Children, n); i >= 0 {
		old.Children = slices.Delete(old.Children, i, i+1)
	}
	at = min(max(at, 0), len(parent.Children))
	parent.Children = slices.Insert(parent.Children, at, n)
	n.parent = parent
	logger.Debug("jsonfile: moved", "node", n.Name, "parent", parent.Name, "at", at)
	return nil
}

// Encode writes the current document as indented JSON.
func (g *Graph) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g.Root())
}
