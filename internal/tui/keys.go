package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings that work on every tab. Board-specific keys live
// with their component.
type KeyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	// Jump selects a tab directly, indexed like the tab bar.
	Jump    [tabCount]key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	km := KeyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for i, title := range tabTitles {
		n := string(rune('1' + i))
		km.Jump[i] = key.NewBinding(key.WithKeys(n), key.WithHelp(n, title))
	}
	return km
}
