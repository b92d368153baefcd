package compare

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/assurlink/courtage/internal/output"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

const (
	nameWidth = 26
	numWidth  = 16
	ruleWidth = 80
)

// Format generates a formatted table comparing variants
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("COMPARAISON DE DEVIS\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString(fmt.Sprintf("Produit : %s\n", compSet.Product.Label()))
	sb.WriteString(fmt.Sprintf("Devis de base : %s\n", compSet.BaseName))
	if compSet.Source != "" {
		sb.WriteString(fmt.Sprintf("Source : %s\n", compSet.Source))
	}
	sb.WriteString("\n")

	capital := compSet.Product.IsCapitalisation()
	sb.WriteString(padRight("Variante", nameWidth))
	sb.WriteString(padLeft("Total à payer", numWidth))
	if capital {
		sb.WriteString(padLeft("Frais", numWidth))
		sb.WriteString(padLeft("Capital final", numWidth))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	sb.WriteString(tf.formatRow(compSet.BaseResult, true, capital))
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, false, capital))
		}
	}
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nÉCARTS PAR RAPPORT À LA BASE\n")
		sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s", alt.Name))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", alt.Description))
			}
			sb.WriteString(":\n")
			sb.WriteString(fmt.Sprintf("  Total à payer :  %s (%s%%)\n",
				signedFCFA(alt.TotalDiffFromBase), alt.TotalPctFromBase.StringFixed(1)))
			if capital {
				sb.WriteString(fmt.Sprintf("  Capital final :  %s (%s%%)\n",
					signedFCFA(alt.CapitalDiffFromBase), alt.CapitalPctFromBase.StringFixed(1)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMANDATIONS\n")
		sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single variant row
func (tf *TableFormatter) formatRow(result *ComparisonResult, isBase, capital bool) string {
	name := result.Name
	if isBase {
		name += " (base)"
	}
	row := padRight(truncate(name, nameWidth-1), nameWidth) + padLeft(output.FormatFCFA(result.TotalPayable), numWidth)
	if capital {
		row += padLeft(output.FormatFCFA(result.TotalFees), numWidth)
		row += padLeft(output.FormatFCFA(result.FinalCapital), numWidth)
	}
	return row + "\n"
}

// FormatCompact creates a single-line summary of total-payable deltas
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base : %s | ", compSet.BaseName))
	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if !alt.TotalDiffFromBase.IsZero() {
			change = signedFCFA(alt.TotalDiffFromBase)
		}
		sb.WriteString(fmt.Sprintf("%s : %s", alt.Name, change))
	}

	return sb.String()
}

func signedFCFA(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + output.FormatFCFA(d)
	}
	return output.FormatFCFA(d)
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
