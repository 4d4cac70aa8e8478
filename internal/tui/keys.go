package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down       key.Binding
	StatusPrev     key.Binding
	StatusNext     key.Binding
	Select         key.Binding
	EditNumber     key.Binding
	Add            key.Binding
	Delete         key.Binding
	Reload         key.Binding
	Quit           key.Binding
	NextField      key.Binding
	PrevField      key.Binding
	Submit, Cancel key.Binding
	Yes, No        key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		StatusPrev: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "status")),
		StatusNext: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "status")),
		Select:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		EditNumber: key.NewBinding(key.WithKeys("n", "e"), key.WithHelp("n", "number")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete selected (or cursor row)")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-sort")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:     key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),
		Yes:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		No:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
	}
}

func (k keyMap) tableHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.StatusNext, k.Select, k.EditNumber, k.Add, k.Delete, k.Reload, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.NextField, k.StatusNext, k.Submit, k.Cancel}
}
