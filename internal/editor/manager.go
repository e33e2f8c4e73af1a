package editor

import (
	"fmt"

	"github.com/joshuapare/vtree/internal/hostcall"
	"github.com/joshuapare/vtree/internal/logger"
	"github.com/joshuapare/vtree/internal/rowstore"
	"github.com/joshuapare/vtree/pkg/types"
)

// ValueSource reads and writes stored cell values through the binding.
type ValueSource interface {
	Value(cell Cell) (any, error)
	Store(cell Cell, value any) error
}

// ValueEvent is the set-cell-value notification fired once per commit.
// Setting Cancel discards the new value and reverts the cell.
type ValueEvent struct {
	Cell     Cell
	OldValue any
	NewValue any
	Trigger  types.EditTrigger
	Cancel   bool
}

// Options configures a Manager.
type Options struct {
	Editors *List
	Source  ValueSource
	// OnChanging is the set-cell-value notification.
	OnChanging func(*ValueEvent)
}

// Session is an edit in progress.
type Session struct {
	cell       Cell
	editor     *CellEditor
	control    any
	newControl bool
	oldValue   any
	state      types.EditState
	trigger    types.EditTrigger
	cancelled  bool // Cancel called while committing
}

func (s *Session) Cell() Cell { return s.cell }
func (s *Session) Editor() *CellEditor { return s.editor }
func (s *Session) Control() any { return s.control }
func (s *Session) NewControl() bool { return s.newControl }
func (s *Session) OldValue() any { return s.oldValue }
func (s *Session) State() types.EditState { return s.state }
func (s *Session) Trigger() types.EditTrigger { return s.trigger }

type attached struct {
	editor  *CellEditor
	control any
}

// Manager owns the edit session of one tree and its control cache.
type Manager struct {
	opts     Options
	active   *Session
	cache    map[string][]any // editor name -> idle controls
	always   map[Cell]*attached
	last     Cell
	lastDone types.EditState
	built    int
	disposed bool
}

// NewManager returns a manager with an empty control cache.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:   opts,
		cache:  make(map[string][]any),
		always: make(map[Cell]*attached),
	}
}

// Active returns the current session or nil.
func (m *Manager) Active() *Session { return m.active }

// ControlsBuilt counts controls constructed so far.
func (m *Manager) ControlsBuilt() int { return m.built }

// Cached returns the number of idle controls for the named editor.
func (m *Manager) Cached(name string) int { return len(m.cache[name]) }

// State returns the edit state of cell. A cell whose last edit was
// cancelled reports Cancelled until another edit starts.
func (m *Manager) State(cell Cell) types.EditState {
	if m.active != nil && m.active.cell == cell {
		return m.active.state
	}
	if m.last == cell {
		return m.lastDone
	}
	return types.EditInactive
}

// EditorFor returns the editor configured for the cell's column.
func (m *Manager) EditorFor(cell Cell) (*CellEditor, error) {
	if cell.Row == nil || cell.Col == nil {
		return nil, &types.Error{Kind: types.ErrKindContract, Op: "editor", Msg: "cell needs a row and a column"}
	}
	if cell.Col.Editor == "" {
		return nil, types.Wrap(types.ErrNoEditor, "editor", fmt.Errorf("column %q is read-only", cell.Col.Name))
	}
	ed := m.opts.Editors.ByName(cell.Col.Editor)
	if ed == nil {
		return nil, types.Wrap(types.ErrNoEditor, "editor", fmt.Errorf("%q", cell.Col.Editor))
	}
	return ed, nil
}

// Activate starts editing cell. An edit already active on another cell is
// committed first. Activating while a commit is running fails with
// ErrReentrantEdit.
func (m *Manager) Activate(cell Cell, trigger types.EditTrigger) (*Session, error) {
	if m.disposed {
		return nil, types.Wrap(types.ErrDisposed, "activate", nil)
	}
	if m.active != nil {
		switch {
		case m.active.state == types.EditCommitting || m.active.state == types.EditActivating:
			return nil, types.Wrap(types.ErrReentrantEdit, "activate", fmt.Errorf("cell %s", cell))
		case m.active.cell == cell:
			return m.active, nil
		}
		if _, err := m.Commit(types.TriggerNavigate); err != nil {
			logger.Warn("editor: implicit commit failed", "cell", m.last.String(), "error", err)
		}
	}

	ed, err := m.EditorFor(cell)
	if err != nil {
		return nil, err
	}
	if !cell.Row.Live() {
		return nil, types.Wrap(types.ErrNotFound, "activate", fmt.Errorf("row was destroyed"))
	}

	s := &Session{cell: cell, editor: ed, state: types.EditActivating, trigger: trigger}
	m.active = s

	if a, ok := m.always[cell]; ok {
		s.control = a.control
	} else {
		s.control, s.newControl, err = m.takeControl(ed)
		if err != nil {
			m.active = nil
			return nil, err
		}
	}

	if err := m.prepare(s, ed, cell); err != nil {
		m.release(s)
		m.active = nil
		return nil, err
	}
	s.state = types.EditActive
	logger.Debug("editor: active", "cell", cell.String(), "editor", ed.Name, "new_control", s.newControl, "trigger", trigger.String())
	return s, nil
}

func (m *Manager) prepare(s *Session, ed *CellEditor, cell Cell) error {
	old, err := hostcall.Value("get-cell-value", func() (any, error) { return m.opts.Source.Value(cell) })
	if err != nil {
		return err
	}
	s.oldValue = old
	if ed.Initialize != nil {
		if err := hostcall.Call("initialize-control", func() error {
			return ed.Initialize(s.control, cell, s.newControl)
		}); err != nil {
			return err
		}
	}
	return hostcall.Call("set-control-value", func() error { return ed.SetValue(s.control, old) })
}

func (m *Manager) takeControl(ed *CellEditor) (any, bool, error) {
	if idle := m.cache[ed.Name]; len(idle) > 0 {
		ctrl := idle[len(idle)-1]
		m.cache[ed.Name] = idle[:len(idle)-1]
		return ctrl, false, nil
	}
	ctrl, err := hostcall.Value("new-control", ed.New)
	if err != nil {
		return nil, false, err
	}
	m.built++
	return ctrl, true, nil
}

func (m *Manager) putControl(ed *CellEditor, ctrl any) {
	if ed.Retain && !m.disposed {
		m.cache[ed.Name] = append(m.cache[ed.Name], ctrl)
		return
	}
	if ed.Dispose != nil {
		_ = hostcall.Call("dispose-control", func() error { ed.Dispose(ctrl); return nil })
	}
}

// release hands the session's control back unless an Always-mode
// attachment still owns it.
func (m *Manager) release(s *Session) {
	if a, ok := m.always[s.cell]; ok && a.control == s.control {
		return
	}
	m.putControl(s.editor, s.control)
}

func (m *Manager) finish(s *Session, state types.EditState) {
	m.release(s)
	m.active = nil
	m.last = s.cell
	m.lastDone = state
}

// Commit ends the active edit. The set-cell-value notification fires once
// with the value at activation and the control's value; if it is
// cancelled the cell reverts and Commit reports false.
func (m *Manager) Commit(trigger types.EditTrigger) (bool, error) {
	s := m.active
	if s == nil {
		return false, types.Wrap(types.ErrNoActiveEdit, "commit", nil)
	}
	if s.state != types.EditActive {
		return false, types.Wrap(types.ErrReentrantEdit, "commit", fmt.Errorf("session is %s", s.state))
	}
	s.state = types.EditCommitting
	s.trigger = trigger

	nv, err := hostcall.Value("get-control-value", func() (any, error) { return s.editor.GetValue(s.control) })
	if err != nil {
		m.revert(s)
		m.finish(s, types.EditCancelled)
		return false, err
	}

	ev := &ValueEvent{Cell: s.cell, OldValue: s.oldValue, NewValue: nv, Trigger: trigger}
	if m.opts.OnChanging != nil {
		if err := hostcall.Call("set-cell-value", func() error { m.opts.OnChanging(ev); return nil }); err != nil {
			// A broken handler cannot approve the change.
			ev.Cancel = true
		}
	}

	if ev.Cancel || s.cancelled || !s.cell.Row.Live() {
		m.revert(s)
		m.finish(s, types.EditCancelled)
		logger.Debug("editor: commit cancelled", "cell", s.cell.String())
		return false, nil
	}

	if err := hostcall.Call("store-cell-value", func() error { return m.opts.Source.Store(s.cell, nv) }); err != nil {
		m.revert(s)
		m.finish(s, types.EditCancelled)
		return false, err
	}
	m.finish(s, types.EditInactive)
	logger.Debug("editor: committed", "cell", s.cell.String(), "trigger", trigger.String())
	return true, nil
}

// Cancel abandons the active edit and reverts the control. Called from
// the set-cell-value notification, it makes the running commit end as
// cancelled without storing the value.
func (m *Manager) Cancel() error {
	s := m.active
	if s == nil {
		return types.Wrap(types.ErrNoActiveEdit, "cancel", nil)
	}
	if s.state == types.EditCommitting {
		s.cancelled = true
		return nil
	}
	s.state = types.EditCancelled
	m.revert(s)
	m.finish(s, types.EditCancelled)
	return nil
}

func (m *Manager) revert(s *Session) {
	_ = hostcall.Call("set-control-value", func() error { return s.editor.SetValue(s.control, s.oldValue) })
}

// Handle routes a user trigger: click or enter on an idle cell starts an
// edit; enter, tab, focus loss or navigation commit; escape cancels.
// It reports whether an edit is active afterwards.
func (m *Manager) Handle(cell Cell, trigger types.EditTrigger) (bool, error) {
	active := m.active != nil && m.active.cell == cell
	switch trigger {
	case types.TriggerEscape:
		if active {
			return false, m.Cancel()
		}
	case types.TriggerTab, types.TriggerFocusLoss, types.TriggerNavigate:
		if m.active != nil {
			_, err := m.Commit(trigger)
			return false, err
		}
	case types.TriggerEnter:
		if active {
			_, err := m.Commit(trigger)
			return false, err
		}
		_, err := m.Activate(cell, trigger)
		return err == nil, err
	case types.TriggerClick, types.TriggerAPI:
		if !active {
			_, err := m.Activate(cell, trigger)
			return err == nil, err
		}
		return true, nil
	}
	return m.active != nil, nil
}

// -----------------------------------------------------------------------------
// Always-mode controls
// -----------------------------------------------------------------------------

// Show attaches a persistent control to cell when its editor uses
// DisplayAlways. It returns nil for OnEdit editors and read-only columns.
func (m *Manager) Show(cell Cell) (any, error) {
	if m.disposed {
		return nil, types.Wrap(types.ErrDisposed, "show", nil)
	}
	if cell.Col == nil || cell.Col.Editor == "" {
		return nil, nil
	}
	ed, err := m.EditorFor(cell)
	if err != nil {
		return nil, err
	}
	if ed.Mode != types.DisplayAlways {
		return nil, nil
	}
	if a, ok := m.always[cell]; ok {
		if m.active == nil || m.active.cell != cell {
			m.refresh(cell, a, false)
		}
		return a.control, nil
	}
	ctrl, isNew, err := m.takeControl(ed)
	if err != nil {
		return nil, err
	}
	a := &attached{editor: ed, control: ctrl}
	m.always[cell] = a
	m.refresh(cell, a, isNew)
	return ctrl, nil
}

func (m *Manager) refresh(cell Cell, a *attached, isNew bool) {
	v, err := hostcall.Value("get-cell-value", func() (any, error) { return m.opts.Source.Value(cell) })
	if err != nil {
		return
	}
	if a.editor.Initialize != nil {
		_ = hostcall.Call("initialize-control", func() error { return a.editor.Initialize(a.control, cell, isNew) })
	}
	_ = hostcall.Call("set-control-value", func() error { return a.editor.SetValue(a.control, v) })
}

// Hide detaches the Always-mode control of cell, committing an edit that
// uses it.
func (m *Manager) Hide(cell Cell) {
	a, ok := m.always[cell]
	if !ok {
		return
	}
	if m.active != nil && m.active.cell == cell && m.active.state == types.EditActive {
		if _, err := m.Commit(types.TriggerFocusLoss); err != nil {
			logger.Warn("editor: commit on hide failed", "cell", cell.String(), "error", err)
		}
	}
	delete(m.always, cell)
	m.putControl(a.editor, a.control)
}

// DropRows forgets sessions and attachments of destroyed rows.
func (m *Manager) DropRows(rows []*rowstore.Row) {
	gone := make(map[*rowstore.Row]struct{}, len(rows))
	for _, r := range rows {
		gone[r] = struct{}{}
	}
	if m.active != nil && m.active.state == types.EditActive {
		if _, ok := gone[m.active.cell.Row]; ok {
			_ = m.Cancel()
		}
	}
	for cell := range m.always {
		if _, ok := gone[cell.Row]; ok {
			m.Hide(cell)
		}
	}
}

// Dispose cancels any edit and disposes every control.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	if m.active != nil && m.active.state == types.EditActive {
		_ = m.Cancel()
	}
	m.disposed = true
	for cell, a := range m.always {
		delete(m.always, cell)
		m.putControl(a.editor, a.control)
	}
	for name, ctrls := range m.cache {
		ed := m.opts.Editors.ByName(name)
		for _, c := range ctrls {
			if ed != nil && ed.Dispose != nil {
				_ = hostcall.Call("dispose-control", func() error { ed.Dispose(c); return nil })
			}
		}
	}
	m.cache = map[string][]any{}
}
