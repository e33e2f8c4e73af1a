package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

var helpSections = []string{"Navigation", "Tree", "Selection", "Editing", "Moving rows", "Commands"}

// helpMarkdown lists the key map as one markdown table per section.
func helpMarkdown(k KeyMap) string {
	var b strings.Builder
	b.WriteString("# Keyboard Shortcuts\n")
	for i, group := range k.FullHelp() {
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n| --- | --- |\n", helpSections[i])
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", escapePipe(h.Key), h.Desc)
		}
	}
	b.WriteString("\nMoves use the rows' drop rules: a row cannot be dropped onto itself or below itself.\n")
	return b.String()
}

func escapePipe(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

// renderHelp renders the help markdown for a terminal of the given width.
// Rendering errors fall back to the raw markdown.
func renderHelp(k KeyMap, width int) string {
	md := helpMarkdown(k)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-8, 40)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// helpView is the foreground model of the help overlay.
type helpView struct {
	content string
}

func (h helpView) Init() tea.Cmd                       { return nil }
func (h helpView) Update(tea.Msg) (tea.Model, tea.Cmd) { return h, nil }
func (h helpView) View() string                        { return helpBoxStyle.Render(h.content) }

// mainView wraps the tree screen for use as the overlay background.
type mainView struct {
	model *Model
}

func (v mainView) Init() tea.Cmd                       { return nil }
func (v mainView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }
func (v mainView) View() string                        { return v.model.screen() }

// keyHelp is the one-line key hint shown in the status bar.
func keyHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
