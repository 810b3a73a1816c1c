package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ToggleLeft  key.Binding
	ToggleRight key.Binding
	NextEntry   key.Binding
	PrevEntry   key.Binding
	Load        key.Binding
	Reload      key.Binding
	Default     key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	ToggleLeft:  key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "template/alert")),
	ToggleRight: key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "preview/markdown")),
	NextEntry:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next template")),
	PrevEntry:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "prev template")),
	Load:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "load")),
	Reload:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "retry catalog")),
	Default:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "default template")),
	Quit:        key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleLeft, k.ToggleRight, k.NextEntry, k.Load, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleLeft, k.ToggleRight},
		{k.NextEntry, k.PrevEntry, k.Load, k.Default, k.Reload},
		{k.Quit},
	}
}
