package calculation

import (
	"testing"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoQuote_PrimeRCScenario(t *testing.T) {
	q := AutoQuote(DefaultRateTables().Auto, domain.AutoInput{
		FiscalPower:    7,
		Usage:          "prive",
		Seats:          5,
		BonusMalus:     "neutre",
		DurationMonths: 12,
	})

	require.NotNil(t, q.Auto)
	assert.Equal(t, "6-10 CV", q.Auto.RCBase.Key)
	assert.True(t, q.Auto.RCBase.Value.Equal(dec(45000)))
	assert.True(t, q.Auto.PrimeRC.Equal(dec(45000)), "got %s", q.Auto.PrimeRC)
	assert.True(t, q.Breakdown.NetPremium.Equal(dec(45000)))
	assert.True(t, q.Breakdown.Total.Equal(dec(62250)), "got %s", q.Breakdown.Total)
	assert.Empty(t, q.Warnings)
}

func TestAutoQuote_CoveragesAndProrata(t *testing.T) {
	q := AutoQuote(DefaultRateTables().Auto, domain.AutoInput{
		FiscalPower:     7,
		Usage:           "prive",
		Seats:           5,
		BonusMalus:      "neutre",
		DurationMonths:  6,
		VehicleValue:    dec(5000000),
		Franchise:       dec(100000),
		Coverages:       []string{"tierce_collision", "vol", "defense_recours", "vol"},
		CrossBorderCard: true,
	})

	require.Len(t, q.Auto.Coverages, 3, "duplicates are priced once")
	want := map[string]int64{"tierce_collision": 54000, "vol": 18000, "defense_recours": 4500}
	for _, c := range q.Auto.Coverages {
		assert.True(t, c.Amount.Equal(dec(want[c.Code])), "%s: got %s", c.Code, c.Amount)
	}

	b := q.Breakdown
	assert.True(t, b.NetPremium.Equal(dec(27000+54000+18000+4500)), "got %s", b.NetPremium)
	tca, _ := b.Line("tca")
	assert.True(t, tca.Amount.Equal(dec(15733)), "got %s", tca.Amount)
	assert.True(t, b.Total.Equal(dec(139233)), "got %s", b.Total)
	assert.True(t, b.Total.Equal(b.Sum()))
}

func TestAutoQuote_Coefficients(t *testing.T) {
	tests := []struct {
		name string
		in   domain.AutoInput
		want int64
	}{
		{"taxi 5 seats", domain.AutoInput{FiscalPower: 4, Usage: "taxi", Seats: 5, BonusMalus: "neutre", DurationMonths: 12}, 66500},
		{"bonus 50", domain.AutoInput{FiscalPower: 12, Usage: "prive", Seats: 4, BonusMalus: "bonus_50", DurationMonths: 12}, 29000},
		{"minibus malus", domain.AutoInput{FiscalPower: 16, Usage: "transport_public", Seats: 18, BonusMalus: "malus_25", DurationMonths: 12}, 263625},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := AutoQuote(DefaultRateTables().Auto, tt.in)
			assert.True(t, q.Auto.PrimeRC.Equal(dec(tt.want)), "got %s", q.Auto.PrimeRC)
		})
	}
}

func TestAutoQuote_FallbacksAreReported(t *testing.T) {
	q := AutoQuote(DefaultRateTables().Auto, domain.AutoInput{
		FiscalPower:    7,
		Usage:          "",
		Seats:          5,
		BonusMalus:     "inconnu",
		DurationMonths: 12,
		Coverages:      []string{"parapluie"},
	})

	assert.True(t, q.Auto.PrimeRC.Equal(dec(45000)), "defaults are 1.0, never zero")
	assert.Len(t, q.Warnings, 3)
	assert.True(t, q.Auto.Usage.Fallback)
	assert.True(t, q.Auto.BonusMalus.Fallback)
}

func TestSavingsQuote(t *testing.T) {
	q := SavingsQuote(DefaultRateTables().Savings, domain.SavingsInput{MonthlyContribution: dec(10000), DurationYears: 3})

	require.NotNil(t, q.Projection)
	assert.True(t, q.Projection.TotalFees.Equal(dec(48000)))
	assert.True(t, q.FinalCapital().Equal(dec(334134)))
	assert.True(t, q.Breakdown.Total.Equal(dec(15000)), "first month plus adhesion, got %s", q.Breakdown.Total)
	assert.Equal(t, domain.RoundEachStep, q.Projection.Rounding)
}

func TestEducationQuote(t *testing.T) {
	in := domain.EducationInput{MonthlyContribution: dec(20000), DeferredYears: 10}
	rates := DefaultRateTables().Education

	q := EducationQuote(rates, in)
	again := EducationQuote(rates, in)

	assert.True(t, q.Projection.TotalContributions.Equal(dec(2400000)))
	assert.True(t, q.FinalCapital().Equal(again.FinalCapital()))
	assert.Equal(t, domain.RoundAtEnd, q.Projection.Rounding)

	require.NotNil(t, q.Education)
	assert.Equal(t, 5, q.Education.RentYears)
	assert.True(t, q.Education.AnnualRent.IsPositive())
	assert.True(t, q.Education.TotalRent.GreaterThan(q.FinalCapital()), "rent includes interest earned during payout")
	assert.True(t, q.Breakdown.Total.Equal(dec(30000)))

	in.RentYears = 8
	q = EducationQuote(rates, in)
	assert.Equal(t, 8, q.Education.RentYears)
}

func TestAnnualRent(t *testing.T) {
	assert.True(t, AnnualRent(dec(1000000), decimal.Zero, 5).Equal(dec(200000)))
	assert.True(t, AnnualRent(dec(1000000), decimal.RequireFromString("0.05"), 1).Equal(dec(1050000)))
	assert.True(t, AnnualRent(dec(1000000), decimal.RequireFromString("0.035"), 0).IsZero())
	assert.True(t, AnnualRent(decimal.Zero, decimal.RequireFromString("0.035"), 5).IsZero())

	rent := AnnualRent(dec(1000000), decimal.RequireFromString("0.035"), 5)
	assert.True(t, rent.GreaterThan(dec(221000)) && rent.LessThan(dec(222000)), "got %s", rent)
}

func TestMoloMoloQuote(t *testing.T) {
	q := MoloMoloQuote(DefaultRateTables().MoloMolo, domain.MoloMoloInput{
		Contribution:  dec(5000),
		Frequency:     domain.FrequencyMonthly,
		DurationYears: 2,
	})

	require.Len(t, q.Projection.Years, 2)
	assert.True(t, q.Projection.Years[0].Capital.Equal(dec(58710)))
	assert.True(t, q.FinalCapital().Equal(dec(119181)))
	assert.True(t, q.MoloMolo.AnnualContribution.Equal(dec(60000)))
	assert.True(t, q.MoloMolo.DeathBenefit.Equal(dec(120000)), "floor applies, got %s", q.MoloMolo.DeathBenefit)
	assert.True(t, q.Breakdown.Total.Equal(dec(7000)))

	long := MoloMoloQuote(DefaultRateTables().MoloMolo, domain.MoloMoloInput{
		Contribution:  dec(5000),
		Frequency:     domain.FrequencyQuarterly,
		DurationYears: 10,
	})
	assert.Equal(t, 4, long.MoloMolo.PaymentsPerYear)
	assert.True(t, long.MoloMolo.DeathBenefit.Equal(long.FinalCapital()), "capital exceeds floor")
}

func TestMoloMoloQuote_UnknownFrequency(t *testing.T) {
	q := MoloMoloQuote(DefaultRateTables().MoloMolo, domain.MoloMoloInput{Contribution: dec(1000), Frequency: "hebdomadaire", DurationYears: 1})
	assert.Equal(t, 12, q.MoloMolo.PaymentsPerYear)
	assert.Len(t, q.Warnings, 1)

	q = MoloMoloQuote(DefaultRateTables().MoloMolo, domain.MoloMoloInput{Contribution: dec(1000), DurationYears: 1})
	assert.Equal(t, 12, q.MoloMolo.PaymentsPerYear)
	assert.Empty(t, q.Warnings, "empty frequency is monthly")

	q = MoloMoloQuote(DefaultRateTables().MoloMolo, domain.MoloMoloInput{Contribution: dec(1000), Frequency: " Annuelle", DurationYears: 1})
	assert.Equal(t, 1, q.MoloMolo.PaymentsPerYear)
	assert.Empty(t, q.Warnings)
}

func TestFuneralQuote(t *testing.T) {
	rates := DefaultRateTables().Funeral
	in := domain.FuneralInput{
		Tier:         "confort",
		PrincipalAge: 45,
		SpouseAges:   []int{38},
		Children:     2,
		Parents:      1,
		Frequency:    domain.FrequencyQuarterly,
	}

	q := FuneralQuote(rates, in)
	f := q.Funeral
	require.NotNil(t, f)
	assert.Len(t, f.Members, 5)
	assert.True(t, f.MonthlyTotal.Equal(dec(13100)))
	assert.True(t, f.Installment.Equal(dec(38514)), "got %s", f.Installment)
	assert.True(t, f.AnnualPremium.Equal(dec(154056)))
	assert.True(t, f.Capital.Equal(dec(1000000)))
	assert.True(t, q.Breakdown.Total.Equal(dec(156056)))
	assert.Empty(t, q.Warnings)

	in.Frequency = domain.FrequencyAnnual
	q = FuneralQuote(rates, in)
	assert.True(t, q.Funeral.AnnualPremium.Equal(dec(149340)))
}

func TestFuneralQuote_InstallmentsSumExactly(t *testing.T) {
	rates := DefaultRateTables().Funeral
	for _, freq := range domain.AllFrequencies() {
		q := FuneralQuote(rates, domain.FuneralInput{Tier: "prestige", PrincipalAge: 59, Children: 3, Frequency: freq})
		n := decimal.NewFromInt(int64(q.Funeral.PaymentsPerYear))
		assert.True(t, q.Funeral.Installment.Mul(n).Equal(q.Breakdown.NetPremium), "%s", freq)
	}
}

func TestFuneralQuote_FrequencyKeyCase(t *testing.T) {
	rates := DefaultRateTables().Funeral
	in := domain.FuneralInput{Tier: "confort", PrincipalAge: 45, Frequency: "Trimestrielle"}

	q := FuneralQuote(rates, in)
	assert.Equal(t, 4, q.Funeral.PaymentsPerYear)
	assert.False(t, q.Funeral.Frequency.Fallback)
	assert.Empty(t, q.Warnings)

	in.Frequency = domain.FrequencyQuarterly
	assert.True(t, FuneralQuote(rates, in).Funeral.Installment.Equal(q.Funeral.Installment))
}

func TestFuneralQuote_Fallbacks(t *testing.T) {
	q := FuneralQuote(DefaultRateTables().Funeral, domain.FuneralInput{Tier: "platine", PrincipalAge: 16})

	assert.Equal(t, "essentiel", q.Funeral.Tier)
	assert.True(t, q.Funeral.Members[0].Monthly.Equal(dec(1500)), "under 18 uses the first age bracket")
	assert.Len(t, q.Warnings, 2)
	assert.Equal(t, 12, q.Funeral.PaymentsPerYear)
}
