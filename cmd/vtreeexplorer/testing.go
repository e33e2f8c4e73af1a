package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TestHelper provides utilities for testing the TUI model
type TestHelper struct {
	model Model
}

// NewTestHelper creates a test helper with a model over path
func NewTestHelper(path string, opts Options) *TestHelper {
	return &TestHelper{model: NewModel(path, opts)}
}

func (h *TestHelper) send(msg tea.Msg) *TestHelper {
	updated, _ := h.model.Update(msg)
	h.model = updated.(Model)
	return h
}

// SendKey simulates a key press but does not execute returned commands
func (h *TestHelper) SendKey(keyType tea.KeyType) *TestHelper {
	return h.send(tea.KeyMsg{Type: keyType})
}

// SendKeyRune simulates a character key press
func (h *TestHelper) SendKeyRune(r rune) *TestHelper {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Type sends each rune of s as a key press
func (h *TestHelper) Type(s string) *TestHelper {
	for _, r := range s {
		h.SendKeyRune(r)
	}
	return h
}

// SendWindowSize simulates a window resize
func (h *TestHelper) SendWindowSize(width, height int) *TestHelper {
	return h.send(tea.WindowSizeMsg{Width: width, Height: height})
}

// Click simulates a left click at a screen position
func (h *TestHelper) Click(x, y int) *TestHelper {
	return h.send(tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
}

// Send delivers an arbitrary message
func (h *TestHelper) Send(msg tea.Msg) *TestHelper {
	return h.send(msg)
}

// GetModel returns the current model
func (h *TestHelper) GetModel() Model {
	return h.model
}

// GetView returns the rendered view
func (h *TestHelper) GetView() string {
	return h.model.View()
}

// VisibleCount returns the number of visible rows
func (h *TestHelper) VisibleCount() int {
	return h.model.tree.VisibleCount()
}

// CurrentPath returns the path of the row under the cursor
func (h *TestHelper) CurrentPath() string {
	r := h.model.current()
	if r == nil {
		return ""
	}
	return h.model.src.Path(r.Item())
}

// MoveTo places the cursor on the visible row with the given path
func (h *TestHelper) MoveTo(path string) bool {
	for i := range h.model.tree.VisibleCount() {
		if h.model.src.Path(h.model.tree.RowAt(i).Item()) == path {
			h.model.cursor = i
			h.model.refresh()
			return true
		}
	}
	return false
}
