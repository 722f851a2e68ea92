// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the grid editor. Printable keys always
// type into the current cell, so every command sits on a modifier, an arrow
// or a function key.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	NextCell key.Binding
	PrevCell key.Binding

	// Editing
	LineBreak key.Binding

	// Structure
	AddRowAfter     key.Binding
	AddRowBefore    key.Binding
	AddColumnAfter  key.Binding
	AddColumnBefore key.Binding
	DeleteRow       key.Binding
	DeleteColumn    key.Binding
	DeleteAll       key.Binding

	// General
	Save           key.Binding
	ToggleControls key.Binding
	ToggleStatus   key.Binding
	Help           key.Binding
	Escape         key.Binding
	Quit           key.Binding

	// DebugLog toggles the log overlay. Only active with --debug.
	DebugLog key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "cell above"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "cell below"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "caret left, previous cell at start"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "caret right, next cell at end"),
		),
		NextCell: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next cell"),
		),
		PrevCell: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous cell"),
		),

		// Editing
		LineBreak: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("ctrl+j", "line break in cell"),
		),

		// Structure
		AddRowAfter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "insert row below"),
		),
		AddRowBefore: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "insert row above"),
		),
		AddColumnAfter: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "insert column right"),
		),
		AddColumnBefore: key.NewBinding(
			key.WithKeys("alt+n"),
			key.WithHelp("alt+n", "insert column left"),
		),
		DeleteRow: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete row"),
		),
		DeleteColumn: key.NewBinding(
			key.WithKeys("alt+d"),
			key.WithHelp("alt+d", "delete column"),
		),
		DeleteAll: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "delete all data"),
		),

		// General
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save file"),
		),
		ToggleControls: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle row/column controls"),
		),
		ToggleStatus: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "toggle status bar"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),

		DebugLog: key.NewBinding(
			key.WithKeys("f12"),
			key.WithHelp("f12", "toggle log (debug)"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.NextCell, k.PrevCell},                                                                     // Navigation
		{k.LineBreak, k.AddRowAfter, k.AddRowBefore, k.AddColumnAfter, k.AddColumnBefore, k.DeleteRow, k.DeleteColumn, k.DeleteAll}, // Structure
		{k.Save, k.ToggleControls, k.ToggleStatus, k.Help, k.Escape, k.Quit},                                                        // General
	}
}

// ConfirmKeyMap defines the keybindings inside a confirmation modal.
type ConfirmKeyMap struct {
	Select key.Binding
	Yes    key.Binding
	No     key.Binding
	Next   key.Binding
	Prev   key.Binding
}

// DefaultConfirmKeyMap returns the keybindings for confirmation modals.
func DefaultConfirmKeyMap() ConfirmKeyMap {
	return ConfirmKeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "press focused button"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		No: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc/n", "cancel"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next button"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab/←", "previous button"),
		),
	}
}
