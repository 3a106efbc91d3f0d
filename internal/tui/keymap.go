package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the single screen's keybinding set.
type keyMap struct {
	Scan    key.Binding
	Stop    key.Binding
	Connect key.Binding
	Up      key.Binding
	Down    key.Binding
	Focus   key.Binding
	Copy    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Scan:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Connect: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect+read")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "pane")),
		Copy:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy entry")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
