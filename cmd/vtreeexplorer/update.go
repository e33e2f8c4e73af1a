package main

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/pkg/types"
	"github.com/joshuapare/vtree/pkg/vtree"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// rowPayload is the drag format of rows moved inside the explorer.
const rowPayload = "application/x-vtree-row"

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = m.bodyHeight() + columnHeaderHeight
		m.help = renderHelp(m.keys, msg.Width)

	case tea.KeyMsg:
		if m.err != nil {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		var quit bool
		cmd, quit = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}

	case tea.MouseMsg:
		if m.err == nil && !m.showHelp {
			m.handleMouse(msg)
		}

	case reloadMsg:
		if msg.err != nil {
			logger.Warn("reload failed", "path", m.path, "error", msg.err)
			m.statusMessage = fmt.Sprintf("Reload failed: %v", msg.err)
		} else if msg.root != nil && m.tree != nil {
			if err := m.reload(msg.root); err != nil {
				m.statusMessage = fmt.Sprintf("Reload failed: %v", err)
				if m.tree == nil {
					m.err = err
				}
			} else {
				m.statusMessage = "Reloaded " + m.path
			}
		}
		cmd = m.waitForReload()

	case watchStoppedMsg:
		if msg.err != nil {
			logger.Warn("file watch stopped", "path", m.path, "error", msg.err)
			m.statusMessage = fmt.Sprintf("Watch stopped: %v", msg.err)
		}
	}

	m.takeNotes()
	m.refresh()
	return m, cmd
}

// handleKey dispatches a key press. It reports whether the program should
// quit.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return nil, false
	}
	if s := m.tree.ActiveEdit(); s != nil {
		return m.handleEditKey(s, msg), false
	}

	m.statusMessage = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.bodyHeight()
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.bodyHeight()
	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
	case key.Matches(msg, m.keys.End):
		m.cursor = m.tree.VisibleCount() - 1
	case key.Matches(msg, m.keys.NextCol):
		m.col = (m.col + 1) % max(len(m.tree.Columns().Visible()), 1)

	case key.Matches(msg, m.keys.Left):
		m.collapseOrParent()
	case key.Matches(msg, m.keys.Right):
		if r := m.current(); r != nil {
			m.report(m.tree.Expand(m.ctx, r))
		}
	case key.Matches(msg, m.keys.Toggle):
		if r := m.current(); r != nil {
			m.report(m.tree.Toggle(m.ctx, r))
		}
	case key.Matches(msg, m.keys.ExpandAll):
		if r := m.current(); r != nil {
			m.fail(m.tree.ExpandAll(m.ctx, r, -1))
		}
	case key.Matches(msg, m.keys.CollapseAll):
		m.collapseAll()
	case key.Matches(msg, m.keys.Reload):
		if r := m.current(); r != nil {
			m.fail(m.tree.Reload(m.ctx, r))
		}
	case key.Matches(msg, m.keys.Sort):
		m.toggleSort()

	case key.Matches(msg, m.keys.Select):
		m.toggleSelection()
	case key.Matches(msg, m.keys.ExtendUp):
		m.extendSelection(-1)
	case key.Matches(msg, m.keys.ExtendDown):
		m.extendSelection(1)
	case key.Matches(msg, m.keys.SelectAll):
		m.applySelection(0, m.tree.VisibleCount()-1, types.SelectClearAndAdd)
	case key.Matches(msg, m.keys.ClearSelect):
		m.mark = nil
		m.applySelection(0, 0, types.SelectClear)

	case key.Matches(msg, m.keys.Edit):
		m.beginEdit(types.TriggerEnter)

	case key.Matches(msg, m.keys.Mark):
		m.markRow()
	case key.Matches(msg, m.keys.DropInto):
		m.drop(0.5)
	case key.Matches(msg, m.keys.DropAbove):
		m.drop(0)
	case key.Matches(msg, m.keys.DropBelow):
		m.drop(0.99)

	case key.Matches(msg, m.keys.Copy):
		m.copyRow()
	case key.Matches(msg, m.keys.CopyPath):
		if r := m.current(); r != nil {
			m.copyText(m.src.Path(r.Item()), "path")
		}
	case key.Matches(msg, m.keys.Save):
		if err := m.saveDocument(); err != nil {
			m.statusMessage = fmt.Sprintf("Save failed: %v", err)
		} else {
			m.statusMessage = "Saved " + m.path
		}
	}
	return nil, false
}

// handleEditKey routes keys to the active edit: enter commits, tab commits
// and moves to the next column, escape cancels, the rest go to the input.
func (m *Model) handleEditKey(s *vtree.EditSession, msg tea.KeyMsg) tea.Cmd {
	cell := s.Cell()
	switch {
	case key.Matches(msg, m.keys.Commit):
		if _, err := m.tree.HandleEdit(cell.Row, cell.Col, types.TriggerEnter); err != nil {
			m.statusMessage = fmt.Sprintf("Edit failed: %v", err)
		}
	case key.Matches(msg, m.keys.Cancel):
		m.fail(m.tree.CancelEdit())
		m.statusMessage = "Edit cancelled"
	case key.Matches(msg, m.keys.NextCol):
		if _, err := m.tree.HandleEdit(cell.Row, cell.Col, types.TriggerTab); err != nil {
			m.statusMessage = fmt.Sprintf("Edit failed: %v", err)
			return nil
		}
		m.col = (m.col + 1) % max(len(m.tree.Columns().Visible()), 1)
		m.beginEdit(types.TriggerAPI)
	default:
		return updateInput(s, msg)
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.cursor--
		return
	case tea.MouseButtonWheelDown:
		m.cursor++
		return
	case tea.MouseButtonLeft:
	default:
		return
	}
	if msg.Action != tea.MouseActionPress {
		return
	}

	index := m.top + msg.Y - headerHeight - columnHeaderHeight
	if msg.Y < headerHeight+columnHeaderHeight || index >= m.tree.VisibleCount() {
		return
	}
	again := index == m.cursor
	m.cursor = index
	col := m.columnAt(msg.X)
	if col < 0 {
		return
	}
	m.col = col
	// A click on the cursor row edits the clicked cell.
	if again || m.tree.ActiveEdit() != nil {
		r := m.current()
		c := m.focusedColumn()
		if _, err := m.tree.HandleEdit(r, c, types.TriggerClick); err != nil && !types.IsKind(err, types.ErrKindState) {
			m.statusMessage = fmt.Sprintf("Edit failed: %v", err)
		}
	}
}

// columnAt maps a screen column to a visible column index, or -1.
func (m *Model) columnAt(x int) int {
	if m.frame != nil && len(m.frame.Rows) > 0 && m.frame.Rows[0].Header != nil {
		x -= 5 // row header and gap
	}
	for i, c := range m.tree.Columns().Visible() {
		if x < c.Width {
			return i
		}
		x -= c.Width + 1
	}
	return -1
}

func (m *Model) beginEdit(trigger types.EditTrigger) {
	r, c := m.current(), m.focusedColumn()
	if r == nil || c == nil {
		return
	}
	if _, err := m.tree.BeginEdit(r, c, trigger); err != nil {
		m.statusMessage = fmt.Sprintf("Cannot edit %s: %v", c.Title(), err)
	}
}

func (m *Model) collapseOrParent() {
	r := m.current()
	if r == nil {
		return
	}
	if r.IsExpanded() {
		m.fail(m.tree.Collapse(r))
		return
	}
	if p := r.Parent(); p != nil && !p.IsRoot() {
		m.cursor = p.VisibleIndex()
	}
}

// collapseAll collapses every top-level row.
func (m *Model) collapseAll() {
	cur := m.current()
	m.fail(m.tree.CollapseChildren(m.tree.Root(), false))
	m.cursor = 0
	if cur != nil && cur.Live() {
		m.cursor = max(cur.VisibleIndex(), 0)
	}
}

// toggleSort sorts by the focused column, reversing on a second press. The
// cursor follows its row.
func (m *Model) toggleSort() {
	c := m.focusedColumn()
	if c == nil {
		return
	}
	cur := m.current()
	ok, err := m.tree.ToggleSort(m.ctx, c.Name)
	switch {
	case err != nil:
		m.fail(err)
		return
	case !ok:
		m.statusMessage = fmt.Sprintf("Column %s is not sortable", c.Caption)
		return
	}
	m.statusMessage = fmt.Sprintf("Sorted by %s, %s", c.Caption, c.SortDirection)
	if cur != nil && cur.Live() {
		m.cursor = max(cur.VisibleIndex(), 0)
	}
}

func (m *Model) toggleSelection() {
	r := m.current()
	if r == nil {
		return
	}
	kind := types.SelectAdd
	if r.IsSelected() {
		kind = types.SelectRemove
	}
	m.applySelection(m.cursor, m.cursor, kind)
}

// extendSelection moves the cursor and selects from the anchor to it.
func (m *Model) extendSelection(delta int) {
	anchor := m.tree.SelectionAnchor()
	if anchor < 0 {
		anchor = m.cursor
	}
	m.cursor = min(max(m.cursor+delta, 0), max(m.tree.VisibleCount()-1, 0))
	m.applySelection(min(anchor, m.cursor), max(anchor, m.cursor), types.SelectClearAndAdd)
}

func (m *Model) applySelection(start, end int, kind types.SelectionChange) {
	if m.tree.VisibleCount() == 0 {
		return
	}
	applied, err := m.tree.Select(start, end, kind)
	switch {
	case err != nil:
		m.statusMessage = fmt.Sprintf("Selection failed: %v", err)
	case !applied:
		m.statusMessage = "Selection change rejected"
	}
}

func (m *Model) markRow() {
	r := m.current()
	if r == nil {
		return
	}
	if !m.tree.CanDrag(r) {
		m.statusMessage = "This row cannot be moved"
		return
	}
	m.mark = r
	m.statusMessage = "Moving " + m.src.Path(r.Item())
}

// drop offers the marked row to the cursor row with the pointer at
// fraction y of the row's height.
func (m *Model) drop(y float64) {
	target := m.current()
	if m.mark == nil || target == nil {
		m.statusMessage = "Pick up a row with m first"
		return
	}
	if !m.mark.Live() {
		m.mark = nil
		return
	}
	item := m.mark.Item()
	p := types.Payload{Format: rowPayload, Data: m.src.Path(item), Source: item}
	res, ok := m.tree.Drop(target, types.Geometry{Y: y, Height: 1}, p)
	if !ok {
		m.statusMessage = fmt.Sprintf("Cannot drop here (allowed: %s)", res.Allowed)
		return
	}
	m.mark = nil
	for _, ev := range m.notes.dropped {
		if err := m.move(ev); err != nil {
			m.statusMessage = fmt.Sprintf("Move failed: %v", err)
		}
	}
	m.notes.dropped = m.notes.dropped[:0]
}

// move applies a delivered row drop to the source and the tree.
func (m *Model) move(ev vtree.DropEvent) error {
	item := ev.Payload.Source
	moving, _ := m.tree.RowFor(item)

	var parent *vtree.Row
	at := math.MaxInt32
	switch ev.Location {
	case types.DropOnRow:
		parent = ev.Row
		if parent.LoadState() == types.Loaded {
			at = parent.ChildCount()
		}
	case types.DropAboveRow, types.DropBelowRow:
		parent = ev.Row.Parent()
		if parent == nil {
			return fmt.Errorf("the root has no siblings")
		}
		at = slices.Index(parent.Children(), ev.Row)
		if ev.Location == types.DropBelowRow {
			at++
		}
		// Positions count siblings after the moving row left.
		if moving != nil && moving.Parent() == parent && slices.Index(parent.Children(), moving) < at {
			at--
		}
	default:
		parent = m.tree.Root()
	}

	if err := m.src.Move(m.ctx, item, parent.Item(), at); err != nil {
		return err
	}
	if err := m.tree.RemoveItem(item); err != nil {
		return err
	}
	row, err := m.tree.InsertItem(parent.Item(), at, item)
	if err != nil {
		return err
	}
	if row != nil && row.VisibleIndex() >= 0 {
		m.cursor = row.VisibleIndex()
	} else if !parent.IsRoot() {
		m.cursor = parent.VisibleIndex()
	}
	m.statusMessage = fmt.Sprintf("Moved %s", m.src.Path(item))
	return nil
}

// copyRow copies the texts of the cursor row's context columns,
// tab-separated.
func (m *Model) copyRow() {
	r := m.current()
	if r == nil || m.frame == nil {
		return
	}
	for _, fr := range m.frame.Rows {
		if fr.Row != r {
			continue
		}
		var parts []string
		for i, w := range fr.Cells {
			if m.tree.ColumnInContext(m.frame.Columns[i]) {
				parts = append(parts, w.Text)
			}
		}
		m.copyText(strings.Join(parts, "\t"), "row")
		return
	}
}

func (m *Model) copyText(s, what string) {
	if err := writeClipboard(s); err != nil {
		m.statusMessage = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.statusMessage = fmt.Sprintf("Copied %s: %s", what, s)
}

// report shows errors of expand-style calls.
func (m *Model) report(_ bool, err error) { m.fail(err) }

func (m *Model) fail(err error) {
	if err != nil {
		m.statusMessage = fmt.Sprintf("Error: %v", err)
	}
}
