package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func backspace(h *TestHelper, n int) {
	for range n {
		h.SendKey(tea.KeyBackspace)
	}
}

func TestEditCommitsValue(t *testing.T) {
	h := newHelper(t, Options{})
	h.SendKeyRune('j')
	h.SendKey(tea.KeyTab)

	h.SendKeyRune('e')
	if h.GetModel().tree.ActiveEdit() == nil {
		t.Fatal("e should start an edit")
	}
	backspace(h, len("vinyl"))
	h.Type("cd")
	h.SendKey(tea.KeyEnter)

	if h.GetModel().tree.ActiveEdit() != nil {
		t.Fatal("enter should end the edit")
	}
	if got := node(t, h, "music").Attr("value"); got != "cd" {
		t.Errorf("value = %v, want cd", got)
	}
	if !strings.Contains(h.GetView(), "cd") {
		t.Error("view should show the new value")
	}
}

func TestEditKeysGoToInput(t *testing.T) {
	h := newHelper(t, Options{})
	h.SendKey(tea.KeyTab)
	h.SendKeyRune('e')

	// q and l are text while editing.
	h.Type("ql")
	if h.VisibleCount() != 2 {
		t.Error("l should not expand while editing")
	}
	h.SendKey(tea.KeyEnter)
	if got := node(t, h, "books").Attr("value"); got != "ql" {
		t.Errorf("value = %v, want ql", got)
	}
}

func TestEditEmptyNameIsVetoed(t *testing.T) {
	h := newHelper(t, Options{})

	h.SendKeyRune('e')
	backspace(h, len("books"))
	h.SendKey(tea.KeyEnter)

	if got := node(t, h, "books").Name; got != "books" {
		t.Errorf("name = %q, want books", got)
	}
	if msg := h.GetModel().statusMessage; msg != "Name must not be empty" {
		t.Errorf("status = %q", msg)
	}
}

func TestEditCancel(t *testing.T) {
	h := newHelper(t, Options{})
	h.SendKeyRune('j')
	h.SendKey(tea.KeyTab)

	h.SendKeyRune('e')
	h.Type("zzz")
	h.SendKey(tea.KeyEsc)

	if h.GetModel().tree.ActiveEdit() != nil {
		t.Fatal("esc should cancel the edit")
	}
	if got := node(t, h, "music").Attr("value"); got != "vinyl" {
		t.Errorf("value = %v, want vinyl", got)
	}
}

func TestEditTabMovesToNextColumn(t *testing.T) {
	h := newHelper(t, Options{})
	h.SendKeyRune('j')

	h.SendKeyRune('e')
	h.Type("s")
	h.SendKey(tea.KeyTab)

	if got := node(t, h, "musics").Name; got != "musics" {
		t.Fatalf("name = %q", got)
	}
	s := h.GetModel().tree.ActiveEdit()
	if s == nil || s.Cell().Col.Name != "value" {
		t.Fatal("tab should continue editing the value column")
	}
	h.SendKey(tea.KeyEsc)
}

func TestClickEditsCursorCell(t *testing.T) {
	h := newHelper(t, Options{})
	y := headerHeight + columnHeaderHeight + 1

	h.Click(30, y) // first click only moves the cursor
	if h.GetModel().tree.ActiveEdit() != nil {
		t.Fatal("first click should not edit")
	}
	h.Click(30, y)
	s := h.GetModel().tree.ActiveEdit()
	if s == nil || s.Cell().Col.Name != "value" {
		t.Fatal("second click should edit the value cell")
	}
}
