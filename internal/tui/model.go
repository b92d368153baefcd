// Package tui is the interactive quote simulator: pick a product, fill its
// form, read the quote and compare it with built-in variants.
package tui

import (
	"context"
	"time"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/compare"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/form"
	"github.com/assurlink/courtage/internal/session"
	"github.com/assurlink/courtage/internal/tui/scenes"
	"github.com/assurlink/courtage/internal/tui/tuistyles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the entire application state
type Model struct {
	currentScene  Scene
	previousScene Scene

	width  int
	height int

	ratesPath string
	rates     *domain.RateTables
	engine    *calculation.CalculationEngine
	comparer  *compare.CompareEngine

	// session is opened by the caller and closed when the user quits
	session *session.Session
	now     func() time.Time

	lastRequest *domain.QuoteRequest

	home         *scenes.HomeModel
	form         *scenes.FormModel
	results      *scenes.ResultsModel
	compareScene *scenes.CompareModel

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	err            error
	loading        bool
	loadingMessage string
}

// NewModel creates the simulator on the rates file at ratesPath (empty for
// the built-in tariff) for an open session.
func NewModel(ratesPath string, s *session.Session) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tuistyles.InfoStyle

	home := scenes.NewHomeModel()
	home.SetSize(80, 20)

	return Model{
		currentScene:   SceneHome,
		ratesPath:      ratesPath,
		session:        s,
		now:            time.Now,
		home:           home,
		form:           scenes.NewFormModel(),
		results:        scenes.NewResultsModel(),
		compareScene:   scenes.NewCompareModel(),
		keys:           defaultKeyMap(),
		help:           help.New(),
		spinner:        sp,
		loading:        true,
		loadingMessage: "Chargement du tarif...",
		width:          80,
		height:         24,
	}
}

// Session returns the session driven by the model
func (m Model) Session() *session.Session { return m.session }

// Init loads the tariff
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadRatesCmd(m.ratesPath), m.spinner.Tick)
}

func loadRatesCmd(path string) tea.Cmd {
	return func() tea.Msg {
		tables, err := config.LoadRates(path)
		return RatesLoadedMsg{Tables: tables, Err: err}
	}
}

// quoteCmd builds the request from raw form values and prices it
func quoteCmd(engine *calculation.CalculationEngine, product domain.Product, values map[string]interface{}) tea.Cmd {
	return func() tea.Msg {
		f, err := form.ForProduct(product, engine.Rates())
		if err != nil {
			return QuoteCompleteMsg{Err: err}
		}
		req, err := f.Request(values)
		if err != nil {
			return QuoteCompleteMsg{Err: err}
		}
		q, err := engine.Quote(req)
		return QuoteCompleteMsg{Request: req, Quote: q, Err: err}
	}
}

func compareCmd(ce *compare.CompareEngine, base *domain.QuoteRequest, templates []string) tea.Cmd {
	return func() tea.Msg {
		set, err := ce.CompareTemplates(context.Background(), base, templates)
		return ComparisonCompleteMsg{Set: set, Err: err}
	}
}
