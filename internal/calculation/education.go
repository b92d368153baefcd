package calculation

import (
	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// EducationQuote projects a Plan Études: monthly contributions accumulate
// over the deferred period, then the capital is paid back as a constant
// annual rent over the rent period.
func EducationQuote(rates domain.EducationRates, in domain.EducationInput) *domain.Quote {
	q := &domain.Quote{Product: domain.ProductEducation}
	proj := Compound(CompoundingParams{
		Contribution:    in.MonthlyContribution,
		PaymentsPerYear: 12,
		Years:           in.DeferredYears,
		FeeSchedule:     rates.FeeByYear,
		InterestRate:    rates.InterestRate,
		Rounding:        rates.Rounding,
	})

	rentYears := in.RentYears
	if rentYears <= 0 {
		rentYears = rates.DefaultRentYears
	}
	rent := AnnualRent(proj.FinalCapital, rates.InterestRate, rentYears)

	q.Projection = &proj
	q.Education = &domain.EducationDetail{
		RentYears:  rentYears,
		AnnualRent: rent,
		TotalRent:  rent.Mul(decimal.NewFromInt(int64(rentYears))),
	}
	q.Breakdown = subscriptionBreakdown(domain.ProductEducation, in.MonthlyContribution, rates.AdhesionFee)
	return q
}

// AnnualRent is the constant annuity paid for years that exhausts capital
// at rate: C·i·f/(f−1) with f = (1+i)^years, or C/years when i is zero.
// The result is rounded to the franc.
func AnnualRent(capital, rate decimal.Decimal, years int) decimal.Decimal {
	if years <= 0 || !capital.IsPositive() {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(years))
	if rate.IsZero() {
		return RoundUnit(capital.Div(n))
	}
	f := decimal.NewFromInt(1).Add(rate).Pow(n)
	return RoundUnit(capital.Mul(rate).Mul(f).Div(f.Sub(decimal.NewFromInt(1))))
}
