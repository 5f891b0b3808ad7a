package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	enter key.Binding
	back  key.Binding
	tab   key.Binding
	liked key.Binding
	sort  key.Binding
	drop  key.Binding
	regen key.Binding
	album key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		liked: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "liked songs")),
		sort:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle sort")),
		drop:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		regen: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "regenerate")),
		album: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "album")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.tab, k.liked},
		{k.sort, k.drop, k.regen, k.album},
		{k.quit},
	}
}
