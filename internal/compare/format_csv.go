package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Variante",
		"Type",
		"Description",
		"Total a payer",
		"Cotisations",
		"Frais",
		"Capital final",
		"Ecart total",
		"Ecart total %",
		"Ecart capital",
		"Ecart capital %",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
		return "", err
	}

	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "variante")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, kind string) []string {
	return []string{
		result.Name,
		kind,
		result.Description,
		result.TotalPayable.StringFixed(0),
		result.TotalContributions.StringFixed(0),
		result.TotalFees.StringFixed(0),
		result.FinalCapital.StringFixed(0),
		result.TotalDiffFromBase.StringFixed(0),
		result.TotalPctFromBase.StringFixed(2),
		result.CapitalDiffFromBase.StringFixed(0),
		result.CapitalPctFromBase.StringFixed(2),
	}
}
