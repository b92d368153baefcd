package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Home    key.Binding
	Form    key.Binding
	Results key.Binding
	Compare key.Binding
	Back    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Home:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "produits")),
		Form:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "saisie")),
		Results: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "devis")),
		Compare: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comparer")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "retour")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "aide")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quitter")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.Form, k.Results, k.Compare, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Home, k.Form, k.Results, k.Compare},
		{k.Back, k.Help, k.Quit},
	}
}
