package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the confirmation gate.
type keyMap struct {
	confirm key.Binding
	abort   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		confirm: key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("enter/y", "apply")),
		abort:   key.NewBinding(key.WithKeys("esc", "q", "n", "ctrl+c"), key.WithHelp("esc/n", "abort")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.confirm, k.abort}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.confirm, k.abort}}
}
