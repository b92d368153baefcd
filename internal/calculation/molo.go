package calculation

import (
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// MoloMoloQuote projects a Molo Molo micro-savings plan paid at the chosen
// frequency. The death benefit is the projected capital, floored at a
// multiple of the annual contribution.
func MoloMoloQuote(rates domain.MoloMoloRates, in domain.MoloMoloInput) *domain.Quote {
	q := &domain.Quote{Product: domain.ProductMoloMolo}

	freq := domain.Frequency(strings.ToLower(strings.TrimSpace(string(in.Frequency))))
	if freq == "" {
		freq = domain.FrequencyMonthly
	}
	payments := freq.PaymentsPerYear()
	if payments == 0 {
		payments = 12
		q.Warnings = append(q.Warnings, fmt.Sprintf("fréquence %q inconnue, mensuelle appliquée", in.Frequency))
	}

	proj := Compound(CompoundingParams{
		Contribution:    in.Contribution,
		PaymentsPerYear: payments,
		Years:           in.DurationYears,
		FeeSchedule:     rates.FeeByYear,
		InterestRate:    rates.InterestRate,
		Rounding:        rates.Rounding,
	})

	annual := RoundUnit(in.Contribution.Mul(decimal.NewFromInt(int64(payments))))
	floor := RoundUnit(annual.Mul(rates.DeathBenefitMultiple))

	q.Projection = &proj
	q.MoloMolo = &domain.MoloMoloDetail{
		PaymentsPerYear:    payments,
		AnnualContribution: annual,
		DeathBenefit:       decimal.Max(proj.FinalCapital, floor),
	}
	q.Breakdown = subscriptionBreakdown(domain.ProductMoloMolo, in.Contribution, rates.AdhesionFee)
	return q
}
