package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the picker's bindings. It satisfies help.KeyMap.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Search    key.Binding
	Group     key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " ", "space"),
			key.WithHelp("enter", "select/deselect"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select/deselect group"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Group: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "group by"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s", "s"),
			key.WithHelp("s", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("q", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.ToggleAll, k.Search, k.Group, k.Submit, k.Cancel, k.Help}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.ToggleAll},
		{k.Search, k.Group, k.Submit, k.Cancel},
	}
}
