package components

import (
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/output"
	"github.com/assurlink/courtage/internal/tui/tuistyles"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// CapitalChart draws the year-end capital of a projection as horizontal bars,
// splitting each bar into paid-in contributions and accrued interest.
type CapitalChart struct {
	Title string
	Years []domain.YearBreakdown
	Width int
}

// NewCapitalChart creates a chart for a projection
func NewCapitalChart(title string, p *domain.Projection) *CapitalChart {
	c := &CapitalChart{Title: title, Width: 40}
	if p != nil {
		c.Years = p.Years
	}
	return c
}

// WithWidth sets the maximum bar width in cells
func (c *CapitalChart) WithWidth(width int) *CapitalChart {
	if width > 0 {
		c.Width = width
	}
	return c
}

// bars returns the contribution and interest cells of one year
func (c *CapitalChart) bars(y domain.YearBreakdown, paid, max decimal.Decimal) (int, int) {
	if !max.IsPositive() {
		return 0, 0
	}
	width := decimal.NewFromInt(int64(c.Width))
	total := int(y.Capital.Div(max).Mul(width).Round(0).IntPart())
	base := int(decimal.Min(paid, y.Capital).Div(max).Mul(width).Round(0).IntPart())
	if base > total {
		base = total
	}
	return base, total - base
}

// Render returns the styled chart
func (c *CapitalChart) Render() string {
	if len(c.Years) == 0 {
		return tuistyles.InfoStyle.Render("Pas de projection pour ce produit")
	}

	max := decimal.Zero
	for _, y := range c.Years {
		max = decimal.Max(max, y.Capital)
	}

	paidStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorPrimary)
	interestStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorSecondary)

	var b strings.Builder
	if c.Title != "" {
		b.WriteString(tuistyles.SectionStyle.Render(c.Title))
		b.WriteString("\n")
	}
	paid := decimal.Zero
	for _, y := range c.Years {
		paid = paid.Add(y.NetContribution)
		base, interest := c.bars(y, paid, max)
		fmt.Fprintf(&b, "%s %s%s%s %s\n",
			tuistyles.LabelStyle.Render(fmt.Sprintf("An %2d", y.Year)),
			paidStyle.Render(strings.Repeat("█", base)),
			interestStyle.Render(strings.Repeat("▒", interest)),
			strings.Repeat(" ", c.Width-base-interest),
			output.FormatFCFA(y.Capital))
	}
	b.WriteString(tuistyles.HelpStyle.Render(
		paidStyle.Render("█") + " versements nets  " + interestStyle.Render("▒") + " intérêts"))
	return b.String()
}
