package render

import "github.com/charmbracelet/lipgloss"

// Palette with domain meaning.
var (
	accentColor = lipgloss.Color("#7D56F4")
	errorColor  = lipgloss.Color("#FF4B4B")
	dimColor    = lipgloss.Color("#767676")
	normalColor = lipgloss.Color("#FAFAFA")
)

// Theme maps the style classes bindings put in RowData.Style and
// CellData.Style to terminal styles.
type Theme struct {
	Classes     map[string]lipgloss.Style
	Row         lipgloss.Style
	RowAlt      lipgloss.Style
	Unavailable lipgloss.Style
	Loading     lipgloss.Style
}

// DefaultTheme returns the built-in classes: "accent", "dim", "error",
// "bold".
func DefaultTheme() Theme {
	return Theme{
		Classes: map[string]lipgloss.Style{
			"accent": lipgloss.NewStyle().Foreground(accentColor),
			"dim":    lipgloss.NewStyle().Foreground(dimColor),
			"error":  lipgloss.NewStyle().Foreground(errorColor),
			"bold":   lipgloss.NewStyle().Bold(true),
		},
		Row:         lipgloss.NewStyle().Foreground(normalColor),
		RowAlt:      lipgloss.NewStyle().Foreground(normalColor).Background(lipgloss.Color("#0A0A0A")),
		Unavailable: lipgloss.NewStyle().Foreground(errorColor).Italic(true),
		Loading:     lipgloss.NewStyle().Foreground(dimColor).Italic(true),
	}
}

func (t Theme) class(name string) (lipgloss.Style, bool) {
	if name == "" {
		return lipgloss.Style{}, false
	}
	s, ok := t.Classes[name]
	return s, ok
}
