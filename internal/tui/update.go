package tui

import (
	"fmt"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/compare"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/form"
	"github.com/assurlink/courtage/internal/tui/tuimsg"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := max(msg.Height-4, 5)
		m.home.SetSize(msg.Width, body)
		m.form.SetSize(msg.Width, body)
		m.results.SetSize(msg.Width, body)
		m.compareScene.SetSize(msg.Width, body)
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case NavigateMsg:
		if msg.Scene != m.currentScene {
			m.previousScene = m.currentScene
			m.currentScene = msg.Scene
		}
		return m, nil

	case RatesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.rates = msg.Tables
		m.engine = calculation.NewCalculationEngineWithRates(calculation.StaticRates{Tables: msg.Tables})
		m.comparer = compare.NewCompareEngine(m.engine)
		m.comparer.Validator = config.NewInputParser(msg.Tables)
		m.home.SetRates(msg.Tables)
		return m, nil

	case tuimsg.ErrorMsg:
		m.err = msg.Err
		return m, nil

	case tuimsg.ProductSelectedMsg:
		if err := m.session.SelectProduct(msg.Product); err != nil {
			m.err = err
			return m, nil
		}
		f, err := form.ForProduct(msg.Product, m.rates)
		if err != nil {
			m.err = err
			return m, nil
		}
		spec, err := f.Describe()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.form.SetForm(spec)
		return m.navigate(SceneForm)

	case tuimsg.FormSubmittedMsg:
		if m.engine == nil {
			return m, nil
		}
		m.loading = true
		m.loadingMessage = "Calcul du devis..."
		return m, tea.Batch(quoteCmd(m.engine, msg.Product, msg.Values), m.spinner.Tick)

	case QuoteCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			// the form shows field errors next to the field
			m.form.SetError(msg.Err)
			return m, nil
		}
		if err := m.session.RecordQuote(msg.Quote); err != nil {
			m.err = err
			return m, nil
		}
		m.form.SetError(nil)
		m.lastRequest = msg.Request
		m.results.SetQuote(msg.Quote)
		m.compareScene.SetTemplates(m.comparer.TemplateRegistry.ForProduct(msg.Quote.Product))
		return m.navigate(SceneResults)

	case tuimsg.CompareRequestedMsg:
		if m.lastRequest == nil || m.comparer == nil {
			return m, nil
		}
		m.loading = true
		m.loadingMessage = "Comparaison des variantes..."
		return m, tea.Batch(compareCmd(m.comparer, m.lastRequest, msg.Templates), m.spinner.Tick)

	case ComparisonCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = fmt.Errorf("comparaison impossible: %w", msg.Err)
			return m, nil
		}
		m.compareScene.SetResult(msg.Set)
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

func (m Model) navigate(s Scene) (tea.Model, tea.Cmd) {
	return m, func() tea.Msg { return NavigateMsg{Scene: s} }
}

// quit closes the session before leaving the program
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.session != nil && !m.session.Closed() {
		_ = m.session.Close(m.now())
	}
	return m, tea.Quit
}

// handleKeyPress processes keyboard input. Letter shortcuts are disabled on
// the form so they reach the text inputs.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.err != nil {
		// any key dismisses the error
		m.err = nil
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	if key.Matches(msg, m.keys.Back) {
		switch m.currentScene {
		case SceneHome:
			return m, nil
		case SceneForm, SceneHelp:
			return m.navigate(SceneHome)
		default:
			return m.navigate(SceneForm)
		}
	}
	if m.currentScene == SceneForm {
		return m.updateCurrentScene(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		if m.currentScene == SceneHelp {
			return m.navigate(m.previousScene)
		}
		return m.navigate(SceneHelp)
	case key.Matches(msg, m.keys.Home):
		return m.navigate(SceneHome)
	case key.Matches(msg, m.keys.Form):
		if p, err := m.session.Product(); err == nil && p != "" {
			return m.navigate(SceneForm)
		}
		return m, nil
	case key.Matches(msg, m.keys.Results):
		if m.results.Quote() != nil {
			return m.navigate(SceneResults)
		}
		return m, nil
	case key.Matches(msg, m.keys.Compare):
		if m.results.Quote() != nil {
			return m.navigate(SceneCompare)
		}
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneHome:
		m.home, cmd = m.home.Update(msg)
	case SceneForm:
		m.form, cmd = m.form.Update(msg)
	case SceneResults:
		m.results, cmd = m.results.Update(msg)
	case SceneCompare:
		m.compareScene, cmd = m.compareScene.Update(msg)
	}
	return m, cmd
}
