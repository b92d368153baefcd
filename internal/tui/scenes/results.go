package scenes

import (
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/output"
	"github.com/assurlink/courtage/internal/tui/components"
	"github.com/assurlink/courtage/internal/tui/tuistyles"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultsModel shows the last computed quote
type ResultsModel struct {
	quote    *domain.Quote
	lines    table.Model
	viewport viewport.Model
	width    int
	height   int
}

// NewResultsModel creates a new results scene model
func NewResultsModel() *ResultsModel {
	t := table.New(
		table.WithColumns(lineColumns(80)),
		table.WithHeight(8),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(tuistyles.ColorSecondary)
	st.Selected = st.Selected.Foreground(tuistyles.ColorPrimary).Bold(true)
	t.SetStyles(st)
	return &ResultsModel{lines: t, viewport: viewport.New(80, 20)}
}

func lineColumns(width int) []table.Column {
	label := width - 44
	if label < 20 {
		label = 20
	}
	return []table.Column{
		{Title: "Ligne", Width: label},
		{Title: "Base", Width: 14},
		{Title: "Taux", Width: 10},
		{Title: "Montant", Width: 16},
	}
}

// SetQuote replaces the displayed quote
func (m *ResultsModel) SetQuote(q *domain.Quote) {
	m.quote = q
	if q == nil {
		m.lines.SetRows(nil)
		return
	}
	rows := make([]table.Row, 0, len(q.Breakdown.Lines))
	for _, l := range q.Breakdown.Lines {
		rate := ""
		if !l.Rate.IsZero() {
			rate = output.FormatRate(l.Rate)
		}
		base := ""
		if !l.Base.IsZero() {
			base = output.FormatAmount(l.Base)
		}
		rows = append(rows, table.Row{l.Label, base, rate, output.FormatFCFA(l.Amount)})
	}
	m.lines.SetRows(rows)
	m.lines.SetHeight(min(len(rows)+1, 12))
	m.refresh()
}

// Quote returns the displayed quote
func (m *ResultsModel) Quote() *domain.Quote { return m.quote }

// SetSize updates the model dimensions
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.lines.SetColumns(lineColumns(width - 4))
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

func (m *ResultsModel) refresh() {
	if m.quote != nil {
		m.viewport.SetContent(m.render())
	}
}

// Update handles messages for the results scene
func (m *ResultsModel) Update(msg tea.Msg) (*ResultsModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ResultsModel) cards() []*components.MetricCard {
	q := m.quote
	cards := []*components.MetricCard{
		components.NewMetricCard("Total à payer", output.FormatFCFA(q.Breakdown.Total)),
		components.NewMetricCard("Prime nette", output.FormatFCFA(q.Breakdown.NetPremium)),
	}
	if p := q.Projection; p != nil {
		cards = append(cards,
			components.NewMetricCard("Capital final", output.FormatFCFA(p.FinalCapital)).
				WithDescription(fmt.Sprintf("taux %s", output.FormatRate(p.InterestRate))),
			components.NewMetricCard("Intérêts", output.FormatFCFA(p.TotalInterest)),
		)
	}
	if e := q.Education; e != nil {
		cards = append(cards, components.NewMetricCard("Rente annuelle", output.FormatFCFA(e.AnnualRent)).
			WithDescription(fmt.Sprintf("pendant %d ans", e.RentYears)))
	}
	return cards
}

func (m *ResultsModel) render() string {
	q := m.quote
	var b strings.Builder

	title := q.Product.Label()
	if q.Request.Name != "" {
		title += " · " + q.Request.Name
	}
	b.WriteString(tuistyles.SectionStyle.Render(title))
	b.WriteString("\n")

	columns := 4
	if m.width > 0 && m.width < 120 {
		columns = 2
	}
	b.WriteString(components.MetricGrid(m.cards(), columns))
	b.WriteString("\n\n")
	b.WriteString(m.lines.View())
	b.WriteString("\n")

	if q.Projection != nil {
		b.WriteString("\n")
		width := 40
		if m.width > 80 {
			width = m.width - 40
		}
		b.WriteString(components.NewCapitalChart("Évolution du capital", q.Projection).WithWidth(width).Render())
		b.WriteString("\n")
	}

	for _, w := range q.Warnings {
		b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorSecondary).Render("! " + w))
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the results
func (m *ResultsModel) View() string {
	if m.quote == nil {
		return tuistyles.InfoStyle.Render("Aucun devis calculé")
	}
	return m.viewport.View()
}
