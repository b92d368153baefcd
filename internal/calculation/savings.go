package calculation

import (
	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// SavingsQuote projects an Épargne Plus contract funded monthly. The
// payable amount at subscription is the first monthly contribution plus
// the adhesion fee.
func SavingsQuote(rates domain.SavingsRates, in domain.SavingsInput) *domain.Quote {
	proj := Compound(CompoundingParams{
		Contribution:    in.MonthlyContribution,
		PaymentsPerYear: 12,
		Years:           in.DurationYears,
		FeeSchedule:     rates.FeeByYear,
		InterestRate:    rates.InterestRate,
		Rounding:        rates.Rounding,
	})

	return &domain.Quote{
		Product:    domain.ProductSavings,
		Breakdown:  subscriptionBreakdown(domain.ProductSavings, in.MonthlyContribution, rates.AdhesionFee),
		Projection: &proj,
	}
}

func subscriptionBreakdown(p domain.Product, firstPayment, adhesion decimal.Decimal) domain.PremiumBreakdown {
	return Assemble(p, firstPayment, domain.FeeSchedule{
		Fees: []domain.FixedFee{{Code: "adhesion", Label: "Frais d'adhésion", Amount: adhesion}},
	})
}
