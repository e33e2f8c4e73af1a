package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/vtree/pkg/types"
	"github.com/joshuapare/vtree/pkg/vtree"
)

const textEditorName = "text"

// textEditor edits cells with a bubbles text input. Inputs are kept in the
// editor cache so repeated edits reuse them.
func textEditor() *vtree.CellEditor {
	return &vtree.CellEditor{
		Name:   textEditorName,
		Mode:   types.DisplayOnEdit,
		Retain: true,
		New: func() (any, error) {
			ti := textinput.New()
			ti.Prompt = ""
			ti.CharLimit = 256
			return &ti, nil
		},
		Initialize: func(control any, cell vtree.Cell, _ bool) error {
			ti := control.(*textinput.Model)
			ti.Width = max(cell.Col.Width-1, 1)
			ti.Focus()
			return nil
		},
		SetValue: func(control any, v any) error {
			ti := control.(*textinput.Model)
			if v == nil {
				ti.SetValue("")
			} else {
				ti.SetValue(fmt.Sprint(v))
			}
			ti.CursorEnd()
			return nil
		},
		GetValue: func(control any) (any, error) {
			return control.(*textinput.Model).Value(), nil
		},
		Dispose: func(control any) {
			control.(*textinput.Model).Blur()
		},
	}
}

// updateInput forwards msg to the active edit's text input.
func updateInput(s *vtree.EditSession, msg tea.Msg) tea.Cmd {
	ti, ok := s.Control().(*textinput.Model)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return cmd
}
