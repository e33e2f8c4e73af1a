package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	NextCol  key.Binding

	// Tree
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Reload      key.Binding
	Sort        key.Binding

	// Selection
	Select      key.Binding
	ExtendUp    key.Binding
	ExtendDown  key.Binding
	SelectAll   key.Binding
	ClearSelect key.Binding

	// Editing
	Edit   key.Binding
	Commit key.Binding
	Cancel key.Binding

	// Moving rows
	Mark      key.Binding
	DropInto  key.Binding
	DropAbove key.Binding
	DropBelow key.Binding

	// Commands
	Copy     key.Binding
	CopyPath key.Binding
	Save     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "collapse/go to parent"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "expand"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "go to bottom"),
		),
		NextCol: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next column"),
		),

		// Tree
		Toggle: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "expand/collapse"),
		),
		ExpandAll: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "expand all children"),
		),
		CollapseAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "collapse all"),
		),
		Reload: key.NewBinding(
			key.WithKeys("f5", "r"),
			key.WithHelp("r", "reload children"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by column"),
		),

		// Selection
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle selection"),
		),
		ExtendUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("shift+↑", "extend selection up"),
		),
		ExtendDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("shift+↓", "extend selection down"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),
		ClearSelect: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear selection"),
		),

		// Editing
		Edit: key.NewBinding(
			key.WithKeys("e", "f2"),
			key.WithHelp("e", "edit cell"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "commit edit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel edit"),
		),

		// Moving rows
		Mark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "pick up row"),
		),
		DropInto: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "drop into row"),
		),
		DropAbove: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "drop above row"),
		),
		DropBelow: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "drop below row"),
		),

		// Commands
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy row"),
		),
		CopyPath: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy path"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save document"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Toggle, k.Edit, k.Select, k.Mark, k.Quit}
}

// FullHelp returns key bindings grouped by section, in help order
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Home, k.End, k.NextCol},
		{k.Toggle, k.ExpandAll, k.CollapseAll, k.Reload, k.Sort},
		{k.Select, k.ExtendUp, k.ExtendDown, k.SelectAll, k.ClearSelect},
		{k.Edit, k.Commit, k.Cancel},
		{k.Mark, k.DropInto, k.DropAbove, k.DropBelow},
		{k.Copy, k.CopyPath, k.Save, k.Help, k.Quit},
	}
}
