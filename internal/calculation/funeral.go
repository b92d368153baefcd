package calculation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// FuneralQuote prices a Pack Obsèques family contract.
//
// Monthly member rates are summed and annualised, the frequency coefficient
// is applied and the result is split into equal rounded installments. The
// annual net premium is installment × payments so the schedule sums exactly.
func FuneralQuote(rates domain.FuneralRates, in domain.FuneralInput) *domain.Quote {
	q := &domain.Quote{Product: domain.ProductFuneral}

	code := strings.ToLower(strings.TrimSpace(in.Tier))
	tier, ok := rates.Tiers[code]
	if !ok {
		code = cheapestTier(rates.Tiers)
		tier = rates.Tiers[code]
		q.Warnings = append(q.Warnings, fmt.Sprintf("formule %q inconnue, %s appliquée", in.Tier, code))
	}

	detail := &domain.FuneralDetail{Tier: code, Capital: tier.Capital}
	addAge := func(role string, age int) {
		res := ResolveBracketInt(tier.PrincipalByAge, age)
		if res.Fallback {
			q.Warnings = append(q.Warnings, fallbackWarning(res, age))
		}
		detail.Members = append(detail.Members, domain.MemberPremium{Role: role, Age: age, Monthly: res.Value})
	}

	addAge("principal", in.PrincipalAge)
	for _, age := range in.SpouseAges {
		addAge("conjoint", age)
	}
	for i := 0; i < in.Children; i++ {
		detail.Members = append(detail.Members, domain.MemberPremium{Role: "enfant", Monthly: tier.Child})
	}
	for i := 0; i < in.Parents; i++ {
		detail.Members = append(detail.Members, domain.MemberPremium{Role: "parent", Monthly: tier.Parent})
	}

	monthly := decimal.Zero
	for _, m := range detail.Members {
		monthly = monthly.Add(m.Monthly)
	}
	detail.MonthlyTotal = monthly

	freq := in.Frequency
	if freq == "" {
		freq = domain.FrequencyMonthly
	}
	detail.Frequency = ResolveKey(rates.Frequency, string(freq))
	if detail.Frequency.Fallback {
		q.Warnings = append(q.Warnings, fallbackWarning(detail.Frequency, string(freq)))
	}
	payments := domain.Frequency(detail.Frequency.Key).PaymentsPerYear()
	if payments == 0 {
		payments = 12
		if !detail.Frequency.Fallback {
			q.Warnings = append(q.Warnings, fmt.Sprintf("fréquence %q sans échéancier, mensuelle appliquée", freq))
		}
	}
	n := decimal.NewFromInt(int64(payments))

	annual := monthly.Mul(decimal.NewFromInt(12)).Mul(detail.Frequency.Value)
	detail.PaymentsPerYear = payments
	detail.Installment = RoundUnit(annual.Div(n))
	detail.AnnualPremium = detail.Installment.Mul(n)

	q.Funeral = detail
	q.Breakdown = Assemble(domain.ProductFuneral, detail.AnnualPremium, rates.Fees)
	return q
}

func cheapestTier(tiers map[string]domain.FuneralTier) string {
	codes := make([]string, 0, len(tiers))
	for c := range tiers {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		ci, cj := tiers[codes[i]].Capital, tiers[codes[j]].Capital
		if ci.Equal(cj) {
			return codes[i] < codes[j]
		}
		return ci.LessThan(cj)
	})
	if len(codes) == 0 {
		return ""
	}
	return codes[0]
}
