package calculation

import (
	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// CompoundingParams drives a year-by-year capital accumulation
type CompoundingParams struct {
	Contribution    decimal.Decimal // amount of one payment
	PaymentsPerYear int
	Years           int
	FeeSchedule     domain.BracketTable // fee rate by policy year
	InterestRate    decimal.Decimal
	Rounding        domain.RoundingMode
}

// Compound simulates the accumulation for years 1..Years.
//
// With RoundEachStep the fee and the capital are rounded to the franc as
// each year is computed and interest is the difference, so every row
// balances exactly. With RoundAtEnd rows keep exact decimals and only the
// totals are rounded; TotalInterest is then derived from the rounded totals.
func Compound(p CompoundingParams) domain.Projection {
	proj := domain.Projection{
		Rounding:     p.Rounding,
		InterestRate: p.InterestRate,
	}
	if p.Years <= 0 || p.PaymentsPerYear <= 0 {
		proj.TotalContributions = decimal.Zero
		proj.TotalFees = decimal.Zero
		proj.TotalInterest = decimal.Zero
		proj.FinalCapital = decimal.Zero
		return proj
	}

	stepRound := p.Rounding != domain.RoundAtEnd
	growth := decimal.NewFromInt(1).Add(p.InterestRate)
	gross := p.Contribution.Mul(decimal.NewFromInt(int64(p.PaymentsPerYear)))
	if stepRound {
		gross = RoundUnit(gross)
	}

	proj.Years = make([]domain.YearBreakdown, 0, p.Years)
	capital := decimal.Zero
	totalGross := decimal.Zero
	totalFees := decimal.Zero
	totalInterest := decimal.Zero

	for year := 1; year <= p.Years; year++ {
		rate := ResolveBracketInt(p.FeeSchedule, year).Value
		fee := gross.Mul(rate)
		if stepRound {
			fee = RoundUnit(fee)
		}
		net := gross.Sub(fee)
		base := capital.Add(net)
		capital = base.Mul(growth)
		if stepRound {
			capital = RoundUnit(capital)
		}
		interest := capital.Sub(base)

		proj.Years = append(proj.Years, domain.YearBreakdown{
			Year:            year,
			Contributions:   gross,
			FeeRate:         rate,
			Fees:            fee,
			NetContribution: net,
			Interest:        interest,
			Capital:         capital,
		})

		totalGross = totalGross.Add(gross)
		totalFees = totalFees.Add(fee)
		totalInterest = totalInterest.Add(interest)
	}

	if stepRound {
		proj.TotalContributions = totalGross
		proj.TotalFees = totalFees
		proj.TotalInterest = totalInterest
		proj.FinalCapital = capital
		return proj
	}

	proj.TotalContributions = RoundUnit(totalGross)
	proj.TotalFees = RoundUnit(totalFees)
	proj.FinalCapital = RoundUnit(capital)
	proj.TotalInterest = proj.FinalCapital.Sub(proj.TotalContributions).Add(proj.TotalFees)
	return proj
}
