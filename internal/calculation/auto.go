package calculation

import (
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
)

// AutoQuote prices a motor policy.
//
// The civil liability premium is base(fiscal power) × usage × seats ×
// bonus-malus, rounded. Each optional coverage is either flat or a rate of
// the vehicle value, damage covers being reduced by the franchise
// coefficient. RC and coverages are then prorated by the duration
// coefficient and rounded individually before the fees are assembled.
func AutoQuote(rates domain.AutoRates, in domain.AutoInput) *domain.Quote {
	q := &domain.Quote{Product: domain.ProductAuto}
	detail := &domain.AutoDetail{
		RCBase:     ResolveBracketInt(rates.RCBase, in.FiscalPower),
		Usage:      ResolveKey(rates.Usage, in.Usage),
		Seats:      ResolveBracketInt(rates.Seats, in.Seats),
		BonusMalus: ResolveKey(rates.BonusMalus, in.BonusMalus),
		Duration:   ResolveBracketInt(rates.Duration, in.DurationMonths),
		Franchise:  ResolveBracket(rates.Franchise, in.Franchise),
	}
	checks := []struct {
		res   domain.Resolution
		input interface{}
	}{
		{detail.RCBase, in.FiscalPower},
		{detail.Usage, in.Usage},
		{detail.Seats, in.Seats},
		{detail.BonusMalus, in.BonusMalus},
		{detail.Duration, in.DurationMonths},
		{detail.Franchise, in.Franchise},
	}
	for _, c := range checks {
		if c.res.Fallback {
			q.Warnings = append(q.Warnings, fallbackWarning(c.res, c.input))
		}
	}

	detail.PrimeRC = RoundUnit(detail.RCBase.Value.
		Mul(detail.Usage.Value).
		Mul(detail.Seats.Value).
		Mul(detail.BonusMalus.Value))

	prorata := detail.Duration.Value
	net := RoundUnit(detail.PrimeRC.Mul(prorata))

	seen := make(map[string]bool, len(in.Coverages))
	for _, code := range in.Coverages {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		cov, ok := rates.Coverages[code]
		if !ok {
			q.Warnings = append(q.Warnings, fmt.Sprintf("garantie inconnue ignorée: %s", code))
			continue
		}
		annual := cov.Flat.Add(cov.Rate.Mul(in.VehicleValue))
		if cov.Damage {
			annual = annual.Mul(detail.Franchise.Value)
		}
		amount := RoundUnit(annual.Mul(prorata))
		detail.Coverages = append(detail.Coverages, domain.CoverageAmount{Code: code, Label: cov.Label, Amount: amount})
		net = net.Add(amount)
	}

	var extras []domain.FixedFee
	if in.CrossBorderCard {
		extras = append(extras, rates.CrossBorderCard)
	}

	q.Breakdown = Assemble(domain.ProductAuto, net, rates.Fees, extras...)
	q.Auto = detail
	return q
}

func fallbackWarning(r domain.Resolution, input interface{}) string {
	if s, ok := input.(string); ok && strings.TrimSpace(s) == "" {
		return fmt.Sprintf("%s: valeur absente, coefficient par défaut %s appliqué", r.Table, r.Value)
	}
	return fmt.Sprintf("%s: %v hors barème, %s (%s) appliqué", r.Table, input, r.Value, r.Key)
}
