package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	submit      key.Binding
	switchFocus key.Binding
	toggleTheme key.Binding
	refresh     key.Binding
	listRefresh key.Binding
	up          key.Binding
	down        key.Binding
	pageUp      key.Binding
	pageDown    key.Binding
	remove      key.Binding
	toggleHelp  key.Binding
	quit        key.Binding
	forceQuit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add task"),
		),
		switchFocus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch focus"),
		),
		toggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle theme"),
		),
		refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		listRefresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		pageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		pageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		remove: key.NewBinding(
			key.WithKeys("d", "x", "delete"),
			key.WithHelp("d/x", "delete"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.switchFocus,
		k.submit,
		k.remove,
		k.refresh,
		k.toggleTheme,
		k.toggleHelp,
		k.forceQuit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.switchFocus, k.submit, k.toggleTheme},
		{k.up, k.down, k.pageUp, k.pageDown},
		{k.remove, k.refresh, k.listRefresh},
		{k.toggleHelp, k.quit, k.forceQuit},
	}
}
