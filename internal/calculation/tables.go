package calculation

import (
	"fmt"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func span(label string, min, max int64, value string) domain.Bracket {
	return domain.Bracket{Label: label, Min: min, Max: &max, Value: d(value)}
}

func from(label string, min int64, value string) domain.Bracket {
	return domain.Bracket{Label: label, Min: min, Value: d(value)}
}

func keyed(name string, values map[string]string) domain.KeyedTable {
	t := domain.KeyedTable{Name: name, Values: make(map[string]decimal.Decimal, len(values)), Default: decimal.NewFromInt(1)}
	for k, v := range values {
		t.Values[k] = d(v)
	}
	return t
}

// DefaultRateTables returns a fresh copy of the compiled-in tariff
func DefaultRateTables() *domain.RateTables {
	return &domain.RateTables{
		Metadata: domain.RateMetadata{
			Version:       "2025.1",
			EffectiveDate: "2025-01-01",
			Currency:      "XOF",
			Description:   "Tarif de référence courtage CIMA",
		},
		Auto:      defaultAutoRates(),
		Savings:   domain.SavingsRates{CapitalisationRates: defaultSavingsRates()},
		Education: defaultEducationRates(),
		MoloMolo:  defaultMoloMoloRates(),
		Funeral:   defaultFuneralRates(),
	}
}

func defaultAutoRates() domain.AutoRates {
	return domain.AutoRates{
		RCBase: domain.BracketTable{Name: "rc_base", Brackets: []domain.Bracket{
			span("1-2 CV", 1, 2, "32000"),
			span("3-5 CV", 3, 5, "38000"),
			span("6-10 CV", 6, 10, "45000"),
			span("11-14 CV", 11, 14, "58000"),
			span("15-23 CV", 15, 23, "74000"),
			from("24+ CV", 24, "92000"),
		}},
		Usage: keyed("usage", map[string]string{
			"prive":                  "1.00",
			"professionnel":          "1.20",
			"taxi":                   "1.75",
			"transport_marchandises": "1.50",
			"transport_public":       "1.90",
			"location":               "1.35",
			"auto_ecole":             "1.25",
		}),
		Seats: domain.BracketTable{Name: "seats", Brackets: []domain.Bracket{
			span("1-5 places", 1, 5, "1.00"),
			span("6-9 places", 6, 9, "1.15"),
			span("10-14 places", 10, 14, "1.30"),
			span("15-22 places", 15, 22, "1.50"),
			from("23+ places", 23, "1.80"),
		}},
		BonusMalus: keyed("bonus_malus", map[string]string{
			"bonus_50":  "0.50",
			"bonus_40":  "0.60",
			"bonus_30":  "0.70",
			"bonus_20":  "0.80",
			"bonus_10":  "0.90",
			"neutre":    "1.00",
			"malus_25":  "1.25",
			"malus_50":  "1.50",
			"malus_100": "2.00",
		}),
		Duration: domain.BracketTable{Name: "duration", Brackets: []domain.Bracket{
			span("1 mois", 1, 1, "0.20"),
			span("2-3 mois", 2, 3, "0.35"),
			span("4-6 mois", 4, 6, "0.60"),
			span("7-9 mois", 7, 9, "0.85"),
			from("10-12 mois", 10, "1.00"),
		}},
		Franchise: domain.BracketTable{Name: "franchise", Brackets: []domain.Bracket{
			span("0-49 999", 0, 49999, "1.00"),
			span("50 000-99 999", 50000, 99999, "0.95"),
			span("100 000-249 999", 100000, 249999, "0.90"),
			from("250 000+", 250000, "0.85"),
		}},
		Coverages: map[string]domain.CoverageRate{
			"defense_recours":         {Label: "Défense et recours", Flat: d("7500")},
			"individuelle_conducteur": {Label: "Individuelle conducteur", Flat: d("12500")},
			"assistance":              {Label: "Assistance 24h/24", Flat: d("15000")},
			"bris_de_glace":           {Label: "Bris de glace", Rate: d("0.005")},
			"incendie":                {Label: "Incendie", Rate: d("0.004")},
			"vol":                     {Label: "Vol", Rate: d("0.006")},
			"tierce_collision":        {Label: "Tierce collision", Rate: d("0.02"), Damage: true},
			"tierce_complete":         {Label: "Tierce complète", Rate: d("0.035"), Damage: true},
		},
		Fees: domain.FeeSchedule{
			Fees:   []domain.FixedFee{{Code: "accessoires", Label: "Coût de police", Amount: d("5000")}},
			Levies: []domain.LevyRule{{Code: "fga", Label: "Fonds de garantie automobile", Rate: d("0.02"), Floor: d("5000")}},
			Taxes:  []domain.TaxRule{{Code: "tca", Label: "Taxe sur les contrats d'assurance", Rate: d("0.145"), IncludeFees: true}},
		},
		CrossBorderCard: domain.FixedFee{Code: "carte_brune", Label: "Carte brune CEDEAO", Amount: d("10000")},
	}
}

func defaultSavingsRates() domain.CapitalisationRates {
	return domain.CapitalisationRates{
		FeeByYear: domain.BracketTable{Name: "epargne_fees", Brackets: []domain.Bracket{
			span("années 1-2", 1, 2, "0.15"),
			span("années 3-5", 3, 5, "0.10"),
			span("années 6-10", 6, 10, "0.05"),
			span("années 11-15", 11, 15, "0.02"),
			from("années 16+", 16, "0"),
		}},
		InterestRate:    d("0.035"),
		AdhesionFee:     d("5000"),
		MinContribution: d("5000"),
		MaxYears:        50,
		Rounding:        domain.RoundEachStep,
	}
}

func defaultEducationRates() domain.EducationRates {
	return domain.EducationRates{
		CapitalisationRates: domain.CapitalisationRates{
			FeeByYear: domain.BracketTable{Name: "education_fees", Brackets: []domain.Bracket{
				span("années 1-2", 1, 2, "0.12"),
				span("années 3-5", 3, 5, "0.08"),
				span("années 6-10", 6, 10, "0.04"),
				span("années 11-15", 11, 15, "0.02"),
				from("années 16+", 16, "0"),
			}},
			InterestRate:    d("0.035"),
			AdhesionFee:     d("10000"),
			MinContribution: d("5000"),
			MaxYears:        25,
			Rounding:        domain.RoundAtEnd,
		},
		DefaultRentYears: 5,
		MaxRentYears:     10,
	}
}

func defaultMoloMoloRates() domain.MoloMoloRates {
	return domain.MoloMoloRates{
		CapitalisationRates: domain.CapitalisationRates{
			FeeByYear: domain.BracketTable{Name: "molo_molo_fees", Brackets: []domain.Bracket{
				from("toutes années", 1, "0.05"),
			}},
			InterestRate:    d("0.03"),
			AdhesionFee:     d("2000"),
			MinContribution: d("1000"),
			MaxYears:        30,
			Rounding:        domain.RoundEachStep,
		},
		DeathBenefitMultiple: d("2"),
	}
}

func funeralAges(rates [4]string) domain.BracketTable {
	return domain.BracketTable{Name: "age", Brackets: []domain.Bracket{
		span("18-40 ans", 18, 40, rates[0]),
		span("41-50 ans", 41, 50, rates[1]),
		span("51-60 ans", 51, 60, rates[2]),
		from("61+ ans", 61, rates[3]),
	}}
}

func defaultFuneralRates() domain.FuneralRates {
	return domain.FuneralRates{
		Tiers: map[string]domain.FuneralTier{
			"essentiel": {
				Label:          "Essentiel",
				Capital:        d("500000"),
				PrincipalByAge: funeralAges([4]string{"1500", "2100", "3200", "4800"}),
				Child:          d("500"),
				Parent:         d("2500"),
			},
			"confort": {
				Label:          "Confort",
				Capital:        d("1000000"),
				PrincipalByAge: funeralAges([4]string{"2800", "3900", "6000", "9200"}),
				Child:          d("900"),
				Parent:         d("4600"),
			},
			"prestige": {
				Label:          "Prestige",
				Capital:        d("2000000"),
				PrincipalByAge: funeralAges([4]string{"5200", "7400", "11500", "17500"}),
				Child:          d("1600"),
				Parent:         d("8800"),
			},
		},
		Frequency: keyed("frequency", map[string]string{
			string(domain.FrequencyMonthly):    "1.00",
			string(domain.FrequencyQuarterly):  "0.98",
			string(domain.FrequencySemiannual): "0.97",
			string(domain.FrequencyAnnual):     "0.95",
		}),
		Fees: domain.FeeSchedule{
			Fees: []domain.FixedFee{{Code: "accessoires", Label: "Frais d'adhésion", Amount: d("2000")}},
		},
		MaxChildren: 6,
		MaxParents:  4,
	}
}

// ValidateBracketTable checks that brackets are ascending, contiguous and
// end with exactly one unbounded bracket
func ValidateBracketTable(t domain.BracketTable) error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("table %s: no brackets", t.Name)
	}
	for i, b := range t.Brackets {
		last := i == len(t.Brackets)-1
		if b.Max == nil && !last {
			return fmt.Errorf("table %s: bracket %d is unbounded but not last", t.Name, i)
		}
		if b.Max != nil && last {
			return fmt.Errorf("table %s: last bracket must be unbounded", t.Name)
		}
		if b.Max != nil && *b.Max < b.Min {
			return fmt.Errorf("table %s: bracket %d has max %d below min %d", t.Name, i, *b.Max, b.Min)
		}
		if b.Value.IsNegative() {
			return fmt.Errorf("table %s: bracket %d has negative value", t.Name, i)
		}
		if i > 0 {
			prev := t.Brackets[i-1]
			if b.Min != *prev.Max+1 {
				return fmt.Errorf("table %s: bracket %d starts at %d, expected %d (gap or overlap)", t.Name, i, b.Min, *prev.Max+1)
			}
		}
	}
	return nil
}

func validateKeyedTable(t domain.KeyedTable) error {
	if len(t.Values) == 0 {
		return fmt.Errorf("table %s: no values", t.Name)
	}
	for k, v := range t.Values {
		if !v.IsPositive() {
			return fmt.Errorf("table %s: coefficient for %q must be positive", t.Name, k)
		}
	}
	if t.Default.IsNegative() {
		return fmt.Errorf("table %s: negative default", t.Name)
	}
	return nil
}

func validateFees(name string, s domain.FeeSchedule) error {
	for _, f := range s.Fees {
		if f.Amount.IsNegative() {
			return fmt.Errorf("%s: fee %s is negative", name, f.Code)
		}
	}
	for _, l := range s.Levies {
		if l.Rate.IsNegative() || l.Floor.IsNegative() {
			return fmt.Errorf("%s: levy %s has negative rate or floor", name, l.Code)
		}
	}
	for _, t := range s.Taxes {
		if t.Rate.IsNegative() || t.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s: tax %s rate must be between 0 and 1", name, t.Code)
		}
	}
	return nil
}

func validateCapitalisation(name string, r domain.CapitalisationRates) error {
	if err := ValidateBracketTable(r.FeeByYear); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, b := range r.FeeByYear.Brackets {
		if b.Value.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s: fee rate %s must be below 100%%", name, b.Value)
		}
	}
	if r.InterestRate.IsNegative() {
		return fmt.Errorf("%s: interest rate cannot be negative", name)
	}
	if r.AdhesionFee.IsNegative() {
		return fmt.Errorf("%s: adhesion fee cannot be negative", name)
	}
	if r.MaxYears <= 0 {
		return fmt.Errorf("%s: max years must be positive", name)
	}
	if r.Rounding != domain.RoundEachStep && r.Rounding != domain.RoundAtEnd {
		return fmt.Errorf("%s: unknown rounding mode %q", name, r.Rounding)
	}
	return nil
}

// ValidateTables checks the whole tariff for structural consistency
func ValidateTables(t *domain.RateTables) error {
	if t == nil {
		return fmt.Errorf("rate tables are nil")
	}

	a := t.Auto
	for _, bt := range []domain.BracketTable{a.RCBase, a.Seats, a.Duration, a.Franchise} {
		if err := ValidateBracketTable(bt); err != nil {
			return fmt.Errorf("auto: %w", err)
		}
	}
	for _, kt := range []domain.KeyedTable{a.Usage, a.BonusMalus} {
		if err := validateKeyedTable(kt); err != nil {
			return fmt.Errorf("auto: %w", err)
		}
	}
	for code, c := range a.Coverages {
		if c.Flat.IsNegative() || c.Rate.IsNegative() {
			return fmt.Errorf("auto: coverage %s has negative pricing", code)
		}
		if c.Flat.IsZero() && c.Rate.IsZero() {
			return fmt.Errorf("auto: coverage %s has neither flat amount nor rate", code)
		}
	}
	if err := validateFees("auto", a.Fees); err != nil {
		return err
	}

	if err := validateCapitalisation("epargne", t.Savings.CapitalisationRates); err != nil {
		return err
	}
	if err := validateCapitalisation("education", t.Education.CapitalisationRates); err != nil {
		return err
	}
	if t.Education.DefaultRentYears <= 0 {
		return fmt.Errorf("education: default rent years must be positive")
	}
	if t.Education.MaxRentYears < t.Education.DefaultRentYears {
		return fmt.Errorf("education: max rent years below default")
	}
	if err := validateCapitalisation("molo_molo", t.MoloMolo.CapitalisationRates); err != nil {
		return err
	}
	if t.MoloMolo.DeathBenefitMultiple.IsNegative() {
		return fmt.Errorf("molo_molo: death benefit multiple cannot be negative")
	}

	f := t.Funeral
	if len(f.Tiers) == 0 {
		return fmt.Errorf("obseques: no tiers")
	}
	for code, tier := range f.Tiers {
		if !tier.Capital.IsPositive() {
			return fmt.Errorf("obseques: tier %s capital must be positive", code)
		}
		if err := ValidateBracketTable(tier.PrincipalByAge); err != nil {
			return fmt.Errorf("obseques: tier %s: %w", code, err)
		}
	}
	if err := validateKeyedTable(f.Frequency); err != nil {
		return fmt.Errorf("obseques: %w", err)
	}
	for _, freq := range domain.AllFrequencies() {
		if _, ok := f.Frequency.Values[string(freq)]; !ok {
			return fmt.Errorf("obseques: missing frequency coefficient for %s", freq)
		}
	}
	return validateFees("obseques", f.Fees)
}
