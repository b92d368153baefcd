package breakeven

import (
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/output"
	"github.com/goccy/go-json"
)

// TableFormatter formats solver results as a console table
type TableFormatter struct{}

// Format generates a formatted table for one solver result
func (tf *TableFormatter) Format(result *SolveResult) string {
	var sb strings.Builder

	sb.WriteString("OBJECTIF DE CAPITAL\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if result.Quote != nil {
		sb.WriteString(fmt.Sprintf("Produit :          %s\n", result.Quote.Product.Label()))
	}
	sb.WriteString(fmt.Sprintf("Paramètre ajusté : %s\n", targetLabel(result.Request.Target)))
	sb.WriteString(fmt.Sprintf("Capital visé :     %s\n", output.FormatFCFA(result.Request.TargetCapital)))
	sb.WriteString(fmt.Sprintf("Statut :           %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Itérations :       %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence :      %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("PARAMÈTRES TROUVÉS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Cotisation :       %s\n", output.FormatFCFA(result.Contribution)))
	sb.WriteString(fmt.Sprintf("Durée :            %d ans\n", result.DurationYears))
	sb.WriteString("\n")

	sb.WriteString("RÉSULTAT PROJETÉ\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Capital final :    %s\n", output.FormatFCFA(result.FinalCapital)))
	sb.WriteString(fmt.Sprintf("Dépassement :      %s\n", output.FormatFCFA(result.Surplus)))
	if result.Quote != nil && result.Quote.Projection != nil {
		sb.WriteString(fmt.Sprintf("Cotisations :      %s\n", output.FormatFCFA(result.Quote.Projection.TotalContributions)))
		sb.WriteString(fmt.Sprintf("Frais :            %s\n", output.FormatFCFA(result.Quote.Projection.TotalFees)))
	}
	sb.WriteString("\n")

	if result.BaseQuote != nil {
		sb.WriteString("COMPARAISON AU DEVIS DE BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		sb.WriteString(fmt.Sprintf("Capital de base :  %s\n", output.FormatFCFA(result.BaseQuote.FinalCapital())))
		switch result.Request.Target {
		case SolveForContribution:
			sb.WriteString(fmt.Sprintf("Écart cotisation : %s\n", signed(result.ContributionDiffFromBase.IntPart())))
		case SolveForDuration:
			sb.WriteString(fmt.Sprintf("Écart durée :      %+d ans\n", result.DurationDiffFromBase))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatMulti formats the results of SolveAll
func (tf *TableFormatter) FormatMulti(result *MultiResult) string {
	var sb strings.Builder

	sb.WriteString("OBJECTIF DE CAPITAL : TOUTES LES OPTIONS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString(fmt.Sprintf("%-24s %16s %8s %16s %16s\n", "Option", "Cotisation", "Durée", "Cotisé", "Capital"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range result.Results {
		sb.WriteString(fmt.Sprintf("%-24s %16s %8s %16s %16s\n",
			targetLabel(r.Request.Target),
			output.FormatFCFA(r.Contribution),
			fmt.Sprintf("%d ans", r.DurationYears),
			output.FormatFCFA(r.totalContributions()),
			output.FormatFCFA(r.FinalCapital)))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMANDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Objectif atteint"
	}
	return "⚠ Objectif non atteint"
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output for a solver result or a MultiResult
func (jf *JSONFormatter) Format(result interface{}) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}
