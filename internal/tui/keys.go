package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Skip      key.Binding
	Backspace key.Binding
	Clear     key.Binding
	Abort     key.Binding
	Quit      key.Binding
	Restart   key.Binding
	Copy      key.Binding
	Leave     key.Binding
	Up        key.Binding
	Down      key.Binding

	result bool
}

var keys = keyMap{
	Skip: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "skip word"),
	),
	Backspace: key.NewBinding(
		key.WithKeys("backspace", "ctrl+h"),
		key.WithHelp("bksp", "undo key"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u", "clear input"),
	),
	Abort: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "abort"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
	Restart: key.NewBinding(
		key.WithKeys("enter", "r"),
		key.WithHelp("enter", "again"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy summary"),
	),
	Leave: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "scroll"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("dn/j", "scroll"),
	),
}

// forResult returns the key map with the result screen bindings active.
func (k keyMap) forResult(on bool) keyMap {
	k.result = on
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	if k.result {
		return []key.Binding{k.Restart, k.Copy, k.Up, k.Down, k.Leave}
	}
	return []key.Binding{k.Skip, k.Backspace, k.Clear, k.Abort, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
