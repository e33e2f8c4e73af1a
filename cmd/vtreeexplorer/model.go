package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/vtree/internal/config"
	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/internal/source"
	"github.com/joshuapare/vtree/pkg/graph/jsonfile"
	"github.com/joshuapare/vtree/pkg/types"
	"github.com/joshuapare/vtree/pkg/vtree"
)

// Layout constants
const (
	headerHeight       = 1 // title bar
	columnHeaderHeight = 2 // captions and separator
	statusHeight       = 1
)

// Options configures NewModel.
type Options struct {
	// Field is the attribute shown in the value column.
	Field string
	// StatePath persists expanded and selected rows between runs when set.
	StatePath string
	// Watch reloads JSON documents when they change on disk.
	Watch  bool
	Source source.Options
	Config *config.Config
}

// notes collects what tree hooks report during one update.
type notes struct {
	status  string
	dropped []vtree.DropEvent
}

// Model is the main application model
type Model struct {
	path string
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	src   *source.Source
	tree  *vtree.Tree
	keys  KeyMap
	vp    viewport.Model
	notes *notes

	width  int
	height int
	top    int // first visible index on screen
	cursor int
	col    int // focused column
	frame  *vtree.Frame

	// Row picked up with Mark, waiting for a drop key.
	mark *vtree.Row

	showHelp bool
	help     string

	reloads chan reloadMsg

	statusMessage string
	err           error
}

// reloadMsg carries a reloaded document root from the file watcher.
type reloadMsg struct {
	root types.Item
	err  error
}

// watchStoppedMsg is sent when the watcher exits.
type watchStoppedMsg struct{ err error }

// NewModel opens path and builds the tree. Failures are shown by View.
func NewModel(path string, opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Field == "" {
		opts.Field = "value"
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		path:    path,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		keys:    DefaultKeyMap(),
		vp:      viewport.New(0, 0),
		notes:   &notes{},
		reloads: make(chan reloadMsg, 1),
	}

	src, err := source.Open(ctx, path, opts.Source)
	if err != nil {
		m.err = err
		return m
	}
	m.src = src

	if m.tree, err = m.buildTree(); err != nil {
		m.err = err
		return m
	}
	if opts.StatePath != "" {
		if err := m.restoreState(opts.StatePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("restore state failed", "path", opts.StatePath, "error", err)
			m.statusMessage = fmt.Sprintf("Could not restore state: %v", err)
		}
	}
	return m
}

// buildTree creates a tree over the source's current root.
func (m *Model) buildTree() (*vtree.Tree, error) {
	n, src := m.notes, m.src
	opts := vtree.OptionsFromConfig(m.opts.Config)
	opts.Binding = src.Binding
	opts.Key = src.Path
	opts.Columns = source.Columns(m.opts.Field)
	for _, c := range opts.Columns {
		c.Editor = textEditorName
	}
	opts.Editors = []*vtree.CellEditor{textEditor()}
	opts.Hooks = vtree.Hooks{
		ChildrenLoaded: func(row *vtree.Row, err error) {
			if err != nil {
				n.status = fmt.Sprintf("Loading %s failed: %v", src.Path(row.Item()), err)
			}
		},
		CellValueChanging: func(ev *vtree.CellValueEvent) {
			if ev.Cell.Col.Field == "" && strings.TrimSpace(fmt.Sprint(ev.NewValue)) == "" {
				ev.Cancel = true
				n.status = "Name must not be empty"
			}
		},
		SelectionChanged: func(_ types.SelectionChange, selected int) {
			n.status = fmt.Sprintf("%d selected", selected)
		},
		DropEffect: func(_ *vtree.Row, _ types.DropLocation, p types.Payload) types.DropEffect {
			if p.Source == nil {
				return types.EffectNone
			}
			return types.EffectMove
		},
		RowDrop: func(ev vtree.DropEvent) {
			n.dropped = append(n.dropped, ev)
		},
	}
	return vtree.New(m.ctx, src.Graph, src.Root, opts)
}

// Init starts the file watcher for JSON documents.
func (m Model) Init() tea.Cmd {
	if m.err != nil || !m.opts.Watch || m.src.JSON() == nil {
		return nil
	}
	return tea.Batch(m.watch(), m.waitForReload())
}

func (m Model) watch() tea.Cmd {
	src, ctx, ch := m.src, m.ctx, m.reloads
	return func() tea.Msg {
		err := src.Watch(ctx, jsonfile.DefaultDebounce, func(root types.Item, err error) {
			select {
			case ch <- reloadMsg{root: root, err: err}:
			case <-ctx.Done():
			}
		})
		return watchStoppedMsg{err: err}
	}
}

func (m Model) waitForReload() tea.Cmd {
	ch, ctx := m.reloads, m.ctx
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// reload swaps in a reloaded document, keeping expanded and selected rows.
func (m *Model) reload(root types.Item) error {
	st := m.tree.SaveState()
	current := ""
	if r := m.tree.RowAt(m.cursor); r != nil {
		current = m.src.Path(r.Item())
	}
	m.tree.Dispose()
	m.mark = nil
	m.src.Root = root

	tree, err := m.buildTree()
	if err != nil {
		m.tree = nil
		return err
	}
	m.tree = tree
	if err := tree.RestoreState(m.ctx, st); err != nil {
		return err
	}
	if current != "" {
		if it, err := m.src.Find(m.ctx, current); err == nil {
			if r, ok := tree.RowFor(it); ok && r.VisibleIndex() >= 0 {
				m.cursor = r.VisibleIndex()
			}
		}
	}
	return nil
}

func (m *Model) restoreState(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := vtree.ReadState(f)
	if err != nil {
		return err
	}
	return m.tree.RestoreState(m.ctx, st)
}

func (m *Model) saveState(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := vtree.WriteState(f, m.tree.SaveState()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// saveDocument writes a JSON document back to its file. Database edits are
// stored as they are made.
func (m *Model) saveDocument() error {
	g := m.src.JSON()
	if g == nil {
		return nil
	}
	f, err := os.Create(g.Path())
	if err != nil {
		return err
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close persists the tree state and releases the tree and the source.
func (m Model) Close() error {
	defer m.cancel()
	var errs []error
	if m.tree != nil {
		if m.opts.StatePath != "" {
			errs = append(errs, m.saveState(m.opts.StatePath))
		}
		m.tree.Dispose()
	}
	if m.src != nil {
		errs = append(errs, m.src.Close())
	}
	return errors.Join(errs...)
}

func (m *Model) bodyHeight() int {
	return max(m.height-headerHeight-columnHeaderHeight-statusHeight, 1)
}

func (m *Model) current() *vtree.Row {
	if m.tree == nil {
		return nil
	}
	return m.tree.RowAt(m.cursor)
}

func (m *Model) focusedColumn() *vtree.Column {
	cols := m.tree.Columns().Visible()
	if len(cols) == 0 {
		return nil
	}
	m.col = min(max(m.col, 0), len(cols)-1)
	return cols[m.col]
}

// refresh scrolls the cursor into view and lays out the visible window.
func (m *Model) refresh() {
	if m.tree == nil {
		return
	}
	h := m.bodyHeight()
	n := m.tree.VisibleCount()
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+h {
		m.top = m.cursor - h + 1
	}
	m.top = max(0, min(m.top, max(n-h, 0)))

	frame, err := m.tree.Layout(m.ctx, m.top, h)
	if err != nil {
		logger.Warn("layout failed", "error", err)
		m.statusMessage = fmt.Sprintf("Layout failed: %v", err)
		return
	}
	m.frame = frame
	// Auto-expanding rows may have changed the count.
	if c := m.tree.VisibleCount(); m.cursor >= c {
		m.cursor = max(c-1, 0)
	}
}

// takeNotes moves hook output into the status line.
func (m *Model) takeNotes() {
	if m.notes.status != "" {
		m.statusMessage = m.notes.status
		m.notes.status = ""
	}
}
