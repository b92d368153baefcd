package calculation

import (
	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// Line codes shared by every breakdown
const (
	LineCodeNet = "prime_nette"
)

// Assemble builds the payable breakdown for a net premium.
//
// Lines come in a fixed order: net premium, fixed fees, extras, levies,
// taxes. Each line is rounded to the franc and the total is the exact sum
// of the rounded lines. A levy charges the greater of rate × net and its
// floor. Zero-amount lines other than the net premium are left out.
func Assemble(product domain.Product, net decimal.Decimal, schedule domain.FeeSchedule, extras ...domain.FixedFee) domain.PremiumBreakdown {
	net = RoundUnit(net)
	b := domain.PremiumBreakdown{
		Product:    product,
		NetPremium: net,
		Lines: []domain.Line{{
			Code:   LineCodeNet,
			Label:  "Prime nette",
			Kind:   domain.LinePremium,
			Base:   net,
			Amount: net,
		}},
	}

	fees := decimal.Zero
	for _, f := range schedule.Fees {
		amount := RoundUnit(f.Amount)
		if amount.IsZero() {
			continue
		}
		fees = fees.Add(amount)
		b.Lines = append(b.Lines, domain.Line{Code: f.Code, Label: f.Label, Kind: domain.LineFee, Amount: amount})
	}

	for _, x := range extras {
		amount := RoundUnit(x.Amount)
		if amount.IsZero() {
			continue
		}
		b.Lines = append(b.Lines, domain.Line{Code: x.Code, Label: x.Label, Kind: domain.LineExtra, Amount: amount})
	}

	for _, l := range schedule.Levies {
		amount := RoundUnit(decimal.Max(net.Mul(l.Rate), l.Floor))
		if amount.IsZero() {
			continue
		}
		b.Lines = append(b.Lines, domain.Line{Code: l.Code, Label: l.Label, Kind: domain.LineLevy, Base: net, Rate: l.Rate, Amount: amount})
	}

	for _, t := range schedule.Taxes {
		base := net
		if t.IncludeFees {
			base = base.Add(fees)
		}
		amount := RoundUnit(base.Mul(t.Rate))
		if amount.IsZero() {
			continue
		}
		b.Lines = append(b.Lines, domain.Line{Code: t.Code, Label: t.Label, Kind: domain.LineTax, Base: base, Rate: t.Rate, Amount: amount})
	}

	b.Total = b.Sum()
	return b
}
