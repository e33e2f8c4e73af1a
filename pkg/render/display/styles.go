package display

import "github.com/charmbracelet/lipgloss"

// Presentation-only styles.
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#3C3C64"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#7D56F4")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	editingStyle = lipgloss.NewStyle().
			Underline(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))
)
