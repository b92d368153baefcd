// Package tuistyles holds the colours and lipgloss styles shared by the
// simulator scenes and components. It has no dependency on the tui package
// so scenes can import it directly.
package tuistyles

import (
	"github.com/assurlink/courtage/internal/output"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("#0B6E4F")
	ColorSecondary = lipgloss.Color("#F2A541")
	ColorAccent    = lipgloss.Color("#08A045")
	ColorSuccess   = lipgloss.Color("#2E7D32")
	ColorDanger    = lipgloss.Color("#C62828")
	ColorInfo      = lipgloss.Color("#1565C0")

	ColorForeground = lipgloss.AdaptiveColor{Light: "#1B1B1B", Dark: "#EDEDED"}
	ColorMuted      = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#9A9A9A"}
	ColorBorder     = lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#4A4A4A"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			MarginBottom(1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	SelectedItemStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	UnselectedItemStyle = lipgloss.NewStyle().Foreground(ColorForeground)

	LabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle = lipgloss.NewStyle().Foreground(ColorForeground)

	MetricLabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	MetricValueStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorForeground)

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
	InfoStyle  = lipgloss.NewStyle().Italic(true).Foreground(ColorInfo)
	HelpStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// MetricTrendStyle colours a delta. For prices a lower amount is the good
// direction, so callers decide what positive means.
func MetricTrendStyle(good bool) lipgloss.Style {
	if good {
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	}
	return lipgloss.NewStyle().Foreground(ColorDanger)
}

// TrendIndicator returns an arrow for the sign of a delta
func TrendIndicator(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return "▲"
	case -1:
		return "▼"
	}
	return "="
}

// FormatFCFA formats an amount the way the printed quotes do
func FormatFCFA(d decimal.Decimal) string {
	return output.FormatFCFA(d)
}
