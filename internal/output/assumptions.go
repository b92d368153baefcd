package output

import (
	"fmt"

	"github.com/assurlink/courtage/internal/domain"
)

// Notes lists the conditions a quote was computed under, rendered in detailed outputs
func Notes(q *domain.Quote) []string {
	notes := []string{
		"Montants exprimés en francs CFA (XOF), arrondis au franc.",
		"Devis indicatif, non contractuel, sous réserve d'acceptation par la compagnie.",
	}
	if q.Projection != nil {
		notes = append(notes,
			fmt.Sprintf("Taux technique annuel : %s.", FormatRate(q.Projection.InterestRate)),
			fmt.Sprintf("Arrondi de la capitalisation : %s.", roundingLabel(q.Projection.Rounding)),
		)
	}
	switch q.Product {
	case domain.ProductAuto:
		notes = append(notes, "Prime calculée hors taxes parafiscales non listées.")
	case domain.ProductFuneral:
		notes = append(notes, "Primes individuelles selon la tranche d'âge à la souscription.")
	}
	return notes
}

func roundingLabel(m domain.RoundingMode) string {
	if m == domain.RoundEachStep {
		return "à chaque année"
	}
	return "en fin de contrat"
}
