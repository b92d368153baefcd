package components

import (
	"fmt"

	"github.com/assurlink/courtage/internal/tui/tuistyles"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// MetricCard displays a single amount with label and optional delta
type MetricCard struct {
	Label       string
	Value       string
	Delta       *Delta
	Description string
	Width       int
}

// Delta is the change of a metric against the base quote
type Delta struct {
	Amount decimal.Decimal
	// Good reports whether this direction favours the client
	Good bool
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 28,
	}
}

// WithDelta adds a delta line. lowerIsBetter marks price-like metrics.
func (m *MetricCard) WithDelta(amount decimal.Decimal, lowerIsBetter bool) *MetricCard {
	good := amount.IsPositive()
	if lowerIsBetter {
		good = amount.IsNegative()
	}
	m.Delta = &Delta{Amount: amount, Good: good}
	return m
}

// WithDescription adds a description/subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

func (m *MetricCard) deltaText() string {
	if m.Delta == nil {
		return ""
	}
	style := tuistyles.MetricTrendStyle(m.Delta.Good)
	if m.Delta.Amount.IsZero() {
		style = tuistyles.LabelStyle
	}
	return style.Render(fmt.Sprintf("%s %s", tuistyles.TrendIndicator(m.Delta.Amount), tuistyles.FormatFCFA(m.Delta.Amount.Abs())))
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" + tuistyles.MetricValueStyle.Render(m.Value)
	if d := m.deltaText(); d != "" {
		content += "\n" + d
	}
	if m.Description != "" {
		content += "\n" + tuistyles.HelpStyle.Render(m.Description)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width).
		Render(content)
}

// RenderCompact returns a compact inline version without border
func (m *MetricCard) RenderCompact() string {
	s := tuistyles.MetricLabelStyle.Render(m.Label+":") + " " + tuistyles.MetricValueStyle.Render(m.Value)
	if d := m.deltaText(); d != "" {
		s += " " + d
	}
	return s
}

// MetricGrid renders cards in rows of columns
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	var rows, current []string
	for i, card := range cards {
		current = append(current, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
