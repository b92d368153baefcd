package tui

import (
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/tui/tuistyles"
	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderApp(tuistyles.BorderStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.loadingMessage)))
	}
	if m.err != nil {
		return m.renderApp(tuistyles.ErrorStyle.Render(
			fmt.Sprintf("Erreur : %s\n\nAppuyez sur une touche pour continuer...", m.err)))
	}

	var content string
	switch m.currentScene {
	case SceneHome:
		content = m.home.View()
	case SceneForm:
		content = m.form.View()
	case SceneResults:
		content = m.results.View()
	case SceneCompare:
		content = m.compareScene.View()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Écran inconnu"
	}
	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	body := lipgloss.NewStyle().Height(max(m.height-4, 1)).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTitleBar(), body, m.renderStatusBar())
}

func (m Model) renderTitleBar() string {
	title := tuistyles.TitleStyle.Render("Courtage · simulateur de devis")

	crumb := m.currentScene.String()
	if p, err := m.session.Product(); err == nil && p != "" {
		crumb = fmt.Sprintf("%s / %s", p.Label(), crumb)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, tuistyles.SubtitleStyle.Render(crumb))
}

func (m Model) renderStatusBar() string {
	status := m.help.View(m.keys)
	if m.currentScene == SceneForm {
		status = tuistyles.StatusKeyStyle.Render("esc") + " retour • " +
			tuistyles.StatusKeyStyle.Render("ctrl+c") + " quitter"
	}

	if m.rates != nil {
		version := tuistyles.SubtitleStyle.Render("tarif " + m.rates.Metadata.Version)
		gap := m.width - lipgloss.Width(status) - lipgloss.Width(version) - 2
		status += strings.Repeat(" ", max(gap, 1)) + version
	}
	return tuistyles.StatusBarStyle.Render(status)
}

func (m Model) renderHelp() string {
	full := m.help
	full.ShowAll = true

	text := strings.Join([]string{
		tuistyles.SectionStyle.Render("Raccourcis"),
		full.View(m.keys),
		"",
		tuistyles.SectionStyle.Render("Saisie"),
		"  tab, ↑ ↓      passer d'un champ à l'autre",
		"  ← →, espace   changer un choix ou une case oui/non",
		"  entrée        champ suivant, calcul sur le dernier champ",
		"  ctrl+s        calculer tout de suite",
		"",
		tuistyles.SectionStyle.Render("Comparaison"),
		"  espace        cocher un modèle",
		"  a             cocher tous les modèles",
		"  entrée        comparer avec le devis courant",
	}, "\n")
	return tuistyles.BorderStyle.Render(text)
}
