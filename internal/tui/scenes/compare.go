package scenes

import (
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/compare"
	"github.com/assurlink/courtage/internal/output"
	"github.com/assurlink/courtage/internal/transform"
	"github.com/assurlink/courtage/internal/tui/components"
	"github.com/assurlink/courtage/internal/tui/tuimsg"
	"github.com/assurlink/courtage/internal/tui/tuistyles"
	tea "github.com/charmbracelet/bubbletea"
)

// CompareModel picks built-in templates for the last quote and shows how
// each variant moves the price and the capital.
type CompareModel struct {
	templates []transform.Template
	selected  map[string]bool
	cursor    int
	result    *compare.ComparisonSet
	width     int
	height    int
}

// NewCompareModel creates a new compare scene model
func NewCompareModel() *CompareModel {
	return &CompareModel{selected: make(map[string]bool)}
}

// SetTemplates lists the templates available for the current product and
// clears any previous comparison
func (m *CompareModel) SetTemplates(templates []transform.Template) {
	m.templates = templates
	m.selected = make(map[string]bool)
	m.cursor = 0
	m.result = nil
}

// SetResult displays a finished comparison
func (m *CompareModel) SetResult(set *compare.ComparisonSet) {
	m.result = set
}

// Result returns the displayed comparison
func (m *CompareModel) Result() *compare.ComparisonSet { return m.result }

// Chosen returns the selected template names in list order
func (m *CompareModel) Chosen() []string {
	var out []string
	for _, t := range m.templates {
		if m.selected[t.Name] {
			out = append(out, t.Name)
		}
	}
	return out
}

// SetSize updates the model dimensions
func (m *CompareModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the compare scene
func (m *CompareModel) Update(msg tea.Msg) (*CompareModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.templates) == 0 {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.templates)-1 {
			m.cursor++
		}
	case " ", "x":
		name := m.templates[m.cursor].Name
		m.selected[name] = !m.selected[name]
	case "a":
		for _, t := range m.templates {
			m.selected[t.Name] = true
		}
	case "enter":
		chosen := m.Chosen()
		if len(chosen) == 0 {
			chosen = []string{m.templates[m.cursor].Name}
		}
		return m, func() tea.Msg { return tuimsg.CompareRequestedMsg{Templates: chosen} }
	}
	return m, nil
}

// View renders the template picker and the last comparison
func (m *CompareModel) View() string {
	if len(m.templates) == 0 {
		return tuistyles.InfoStyle.Render("Calculez d'abord un devis pour le comparer")
	}

	var b strings.Builder
	b.WriteString(tuistyles.SectionStyle.Render("Modèles de variantes"))
	b.WriteString("\n")
	for i, t := range m.templates {
		check := "[ ]"
		if m.selected[t.Name] {
			check = "[x]"
		}
		style := tuistyles.UnselectedItemStyle
		if i == m.cursor {
			style = tuistyles.SelectedItemStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s %-22s", check, t.Name)))
		b.WriteString(" ")
		b.WriteString(tuistyles.HelpStyle.Render(t.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(tuistyles.HelpStyle.Render("espace : cocher • a : tout • entrée : comparer"))
	b.WriteString("\n")

	if m.result != nil {
		b.WriteString("\n")
		b.WriteString(m.renderResult())
	}
	return b.String()
}

func (m *CompareModel) renderResult() string {
	set := m.result
	capitalised := set.Product.IsCapitalisation()

	var b strings.Builder
	b.WriteString(tuistyles.SectionStyle.Render("Comparaison avec " + set.BaseName))
	b.WriteString("\n")

	base := components.NewMetricCard("Base", output.FormatFCFA(set.BaseResult.TotalPayable))
	if capitalised {
		base.WithDescription("capital " + output.FormatFCFA(set.BaseResult.FinalCapital))
	}
	b.WriteString(base.RenderCompact())
	b.WriteString("\n")

	for _, r := range set.AlternativeResults {
		card := components.NewMetricCard(r.Name, output.FormatFCFA(r.TotalPayable)).
			WithDelta(r.TotalDiffFromBase, true)
		b.WriteString(card.RenderCompact())
		if capitalised {
			capital := components.NewMetricCard("capital", output.FormatFCFA(r.FinalCapital)).
				WithDelta(r.CapitalDiffFromBase, false)
			b.WriteString("  ")
			b.WriteString(capital.RenderCompact())
		}
		b.WriteString("\n")
	}

	if len(set.Recommendations) > 0 {
		b.WriteString("\n")
		for _, rec := range set.Recommendations {
			b.WriteString(tuistyles.InfoStyle.Render("• " + rec))
			b.WriteString("\n")
		}
	}
	return b.String()
}
