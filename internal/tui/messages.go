package tui

import (
	"github.com/assurlink/courtage/internal/compare"
	"github.com/assurlink/courtage/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneHome Scene = iota
	SceneForm
	SceneResults
	SceneCompare
	SceneHelp
)

func (s Scene) String() string {
	switch s {
	case SceneHome:
		return "Produits"
	case SceneForm:
		return "Saisie"
	case SceneResults:
		return "Devis"
	case SceneCompare:
		return "Comparaison"
	case SceneHelp:
		return "Aide"
	default:
		return "Inconnu"
	}
}

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// RatesLoadedMsg signals the tariff has been loaded
type RatesLoadedMsg struct {
	Tables *domain.RateTables
	Err    error
}

// QuoteCompleteMsg signals a quote calculation has finished
type QuoteCompleteMsg struct {
	Request *domain.QuoteRequest
	Quote   *domain.Quote
	Err     error
}

// ComparisonCompleteMsg signals a comparison has finished
type ComparisonCompleteMsg struct {
	Set *compare.ComparisonSet
	Err error
}
