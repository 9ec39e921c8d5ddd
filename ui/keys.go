package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Search    key.Binding
	Category  key.Binding
	SortName  key.Binding
	SortGrade key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Enter     key.Binding
	Back      key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Category:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
	SortName:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "sort name")),
	SortGrade: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "sort grade")),
	PrevPage:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/←", "prev page")),
	NextPage:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/→", "next page")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detail")),
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp returns short help key bindings (for help.Model)
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Category, k.SortName, k.SortGrade, k.NextPage, k.Enter, k.Quit}
}

// FullHelp returns full help key bindings
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Search, k.Category, k.SortName, k.SortGrade},
		{k.PrevPage, k.NextPage, k.Refresh},
		{k.Help, k.Quit},
	}
}
