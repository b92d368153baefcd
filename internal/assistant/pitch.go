package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/output"
)

const pitchSystem = `Tu es un conseiller commercial d'un courtier en assurance au Sénégal.
Tu rédiges en français, en markdown, un argumentaire court (150 mots maximum) et honnête pour présenter un devis à un client.
Cite les montants exacts fournis, sans en inventer d'autres. Termine par une invitation à souscrire.`

// SalesPitch writes a markdown sales argument for a computed quote
func (a *Assistant) SalesPitch(ctx context.Context, q *domain.Quote) (string, error) {
	if q == nil {
		return "", domain.NewValidationError("quote", "devis manquant")
	}
	text, err := a.complete(ctx, "sales_pitch", Prompt{
		System: pitchSystem,
		Parts:  []Part{{Text: describeQuote(q)}},
	})
	if err != nil {
		return "", err
	}
	return stripFence(text), nil
}

// describeQuote summarises a quote as plain facts for a prompt
func describeQuote(q *domain.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produit : %s\n", q.Product.Label())
	for _, l := range q.Breakdown.Lines {
		fmt.Fprintf(&b, "- %s : %s\n", l.Label, output.FormatFCFA(l.Amount))
	}
	fmt.Fprintf(&b, "Total à payer : %s\n", output.FormatFCFA(q.Breakdown.Total))

	if p := q.Projection; p != nil {
		fmt.Fprintf(&b, "Durée : %d ans\n", len(p.Years))
		fmt.Fprintf(&b, "Total versé : %s\n", output.FormatFCFA(p.TotalContributions))
		fmt.Fprintf(&b, "Capital constitué : %s\n", output.FormatFCFA(p.FinalCapital))
	}
	switch {
	case q.Auto != nil:
		if len(q.Auto.Coverages) > 0 {
			names := make([]string, 0, len(q.Auto.Coverages))
			for _, c := range q.Auto.Coverages {
				names = append(names, c.Label)
			}
			fmt.Fprintf(&b, "Garanties : responsabilité civile, %s\n", strings.Join(names, ", "))
		} else {
			fmt.Fprintln(&b, "Garanties : responsabilité civile seule")
		}
	case q.Education != nil:
		fmt.Fprintf(&b, "Rente études : %s par an pendant %d ans\n", output.FormatFCFA(q.Education.AnnualRent), q.Education.RentYears)
	case q.MoloMolo != nil:
		fmt.Fprintf(&b, "Capital décès : %s\n", output.FormatFCFA(q.MoloMolo.DeathBenefit))
	case q.Funeral != nil:
		fmt.Fprintf(&b, "Formule %s, capital %s, %d personnes couvertes, échéance %s\n",
			q.Funeral.Tier, output.FormatFCFA(q.Funeral.Capital), len(q.Funeral.Members), output.FormatFCFA(q.Funeral.Installment))
	}
	return b.String()
}
