package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/joshuapare/vtree/pkg/render"
)

// View renders the entire UI
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.showHelp {
		help := overlay.New(
			helpView{content: m.help},
			mainView{model: &m},
			overlay.Center,
			overlay.Center,
			0,
			0,
		)
		return help.View()
	}
	return m.screen()
}

// screen renders the title bar, the tree and the status bar.
func (m *Model) screen() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderStatus(),
	)
}

func (m *Model) renderHeader() string {
	title := "vtree explorer"
	where := ""
	if r := m.current(); r != nil {
		where = m.src.Path(r.Item())
	}
	line := headerStyle.Render(title) + " " + pathStyle.Render(m.path+" "+where)
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(line)
}

func (m *Model) renderContent() string {
	if m.frame == nil {
		return ""
	}
	lines := render.Lines(m.frame, render.Options{
		Width:  m.width,
		Cursor: m.current(),
		Sort:   m.tree.SortColumn(),
	})
	// Pad short trees so the status bar stays at the bottom.
	for len(lines) < m.bodyHeight()+columnHeaderHeight {
		lines = append(lines, "")
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	return m.vp.View()
}

func (m *Model) renderStatus() string {
	var parts []string
	if m.tree != nil {
		parts = append(parts, statusCountStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, m.tree.VisibleCount())))
		if n := m.tree.SelectedCount(); n > 0 {
			parts = append(parts, fmt.Sprintf("%d selected", n))
		}
		if c := m.focusedColumn(); c != nil {
			parts = append(parts, "col "+c.Title())
		}
	}
	if m.mark != nil && m.mark.Live() {
		parts = append(parts, markStyle.Render("moving "+m.src.Path(m.mark.Item())))
	}
	if m.statusMessage != "" {
		parts = append(parts, m.statusMessage)
	} else {
		parts = append(parts, keyHelp(m.keys.ShortHelp()))
	}
	return statusStyle.Width(max(m.width, 1)).MaxHeight(statusHeight).Render(strings.Join(parts, "  "))
}
