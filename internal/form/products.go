package form

import (
	"fmt"
	"sort"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

var optionLabels = map[string]string{
	"prive":                  "Usage privé",
	"professionnel":          "Usage professionnel",
	"taxi":                   "Taxi",
	"transport_marchandises": "Transport de marchandises",
	"transport_public":       "Transport public de voyageurs",
	"location":               "Location",
	"auto_ecole":             "Auto-école",
	"bonus_50":               "Bonus 50 %",
	"bonus_40":               "Bonus 40 %",
	"bonus_30":               "Bonus 30 %",
	"bonus_20":               "Bonus 20 %",
	"bonus_10":               "Bonus 10 %",
	"neutre":                 "Neutre",
	"malus_25":               "Malus 25 %",
	"malus_50":               "Malus 50 %",
	"malus_100":              "Malus 100 %",
	"mensuelle":              "Mensuelle",
	"trimestrielle":          "Trimestrielle",
	"semestrielle":           "Semestrielle",
	"annuelle":               "Annuelle",
}

func label(key string) string {
	if l, ok := optionLabels[key]; ok {
		return l
	}
	return key
}

func num(v int64) *decimal.Decimal {
	x := decimal.NewFromInt(v)
	return &x
}

func dec(v decimal.Decimal) *decimal.Decimal {
	return &v
}

// keyedOptions lists table keys ordered by coefficient, then key
func keyedOptions(t domain.KeyedTable) []Option {
	keys := make([]string, 0, len(t.Values))
	for k := range t.Values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		vi, vj := t.Values[keys[i]], t.Values[keys[j]]
		if vi.Equal(vj) {
			return keys[i] < keys[j]
		}
		return vi.LessThan(vj)
	})
	opts := make([]Option, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, Option{Value: k, Label: label(k)})
	}
	return opts
}

func frequencyField() *ChoiceField {
	opts := make([]Option, 0, 4)
	for _, f := range domain.AllFrequencies() {
		opts = append(opts, Option{Value: string(f), Label: label(string(f))})
	}
	return &ChoiceField{
		meta:    meta{Name: "frequency", Text: "Périodicité de paiement", Required: true},
		Options: opts,
		Default: string(domain.FrequencyMonthly),
	}
}

func contributionField(name, text string, r domain.CapitalisationRates) *NumberField {
	return &NumberField{
		meta:    meta{Name: name, Text: text, Required: true},
		Min:     dec(r.MinContribution),
		Integer: true,
		Unit:    "FCFA",
	}
}

func yearsField(name, text string, max int) *NumberField {
	return &NumberField{
		meta:    meta{Name: name, Text: text, Required: true},
		Min:     num(1),
		Max:     num(int64(max)),
		Integer: true,
		Unit:    "ans",
	}
}

// ForProduct builds the quote form of a product from the tariff in force
func ForProduct(p domain.Product, rates *domain.RateTables) (*Form, error) {
	if rates == nil {
		return nil, fmt.Errorf("form: no rate tables")
	}
	switch p {
	case domain.ProductAuto:
		return autoForm(rates.Auto), nil
	case domain.ProductSavings:
		r := rates.Savings.CapitalisationRates
		return &Form{Product: p, Title: p.Label(), Fields: []Field{
			contributionField("monthly_contribution", "Cotisation mensuelle", r),
			yearsField("duration_years", "Durée du contrat", r.MaxYears),
		}}, nil
	case domain.ProductEducation:
		r := rates.Education
		return &Form{Product: p, Title: p.Label(), Fields: []Field{
			contributionField("monthly_contribution", "Cotisation mensuelle", r.CapitalisationRates),
			yearsField("deferred_years", "Durée de constitution", r.MaxYears),
			&NumberField{
				meta:    meta{Name: "rent_years", Text: "Durée de la rente", Help: "Nombre d'années de versement de la rente études"},
				Min:     num(1),
				Max:     num(int64(r.MaxRentYears)),
				Integer: true,
				Unit:    "ans",
				Default: num(int64(r.DefaultRentYears)),
			},
		}}, nil
	case domain.ProductMoloMolo:
		r := rates.MoloMolo.CapitalisationRates
		return &Form{Product: p, Title: p.Label(), Fields: []Field{
			contributionField("contribution", "Versement périodique", r),
			frequencyField(),
			yearsField("duration_years", "Durée du contrat", r.MaxYears),
		}}, nil
	case domain.ProductFuneral:
		return funeralForm(rates.Funeral), nil
	}
	return nil, fmt.Errorf("form: unknown product %q", p)
}

func autoForm(r domain.AutoRates) *Form {
	covCodes := make([]string, 0, len(r.Coverages))
	for code := range r.Coverages {
		covCodes = append(covCodes, code)
	}
	sort.Strings(covCodes)
	covOpts := make([]Option, 0, len(covCodes))
	for _, code := range covCodes {
		covOpts = append(covOpts, Option{Value: code, Label: r.Coverages[code].Label})
	}

	return &Form{Product: domain.ProductAuto, Title: domain.ProductAuto.Label(), Fields: []Field{
		&NumberField{meta: meta{Name: "fiscal_power", Text: "Puissance fiscale", Required: true}, Min: num(1), Max: num(99), Integer: true, Unit: "CV"},
		&ChoiceField{meta: meta{Name: "usage", Text: "Usage du véhicule", Required: true}, Options: keyedOptions(r.Usage), Default: "prive"},
		&NumberField{meta: meta{Name: "seats", Text: "Nombre de places"}, Min: num(1), Max: num(100), Integer: true, Default: num(5)},
		&ChoiceField{meta: meta{Name: "bonus_malus", Text: "Bonus-malus", Required: true}, Options: keyedOptions(r.BonusMalus), Default: "neutre"},
		&NumberField{meta: meta{Name: "duration_months", Text: "Durée de couverture"}, Min: num(1), Max: num(12), Integer: true, Unit: "mois", Default: num(12)},
		&NumberField{meta: meta{Name: "vehicle_value", Text: "Valeur vénale du véhicule", Help: "Requise pour les garanties dommages, vol et incendie"}, Min: num(0), Integer: true, Unit: "FCFA", Default: num(0)},
		&NumberField{meta: meta{Name: "franchise", Text: "Franchise"}, Min: num(0), Integer: true, Unit: "FCFA", Default: num(0)},
		&MultiChoiceField{meta: meta{Name: "coverages", Text: "Garanties optionnelles"}, Options: covOpts},
		&ToggleField{meta: meta{Name: "cross_border_card", Text: "Carte brune CEDEAO"}},
	}}
}

func funeralForm(r domain.FuneralRates) *Form {
	codes := make([]string, 0, len(r.Tiers))
	for code := range r.Tiers {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return r.Tiers[codes[i]].Capital.LessThan(r.Tiers[codes[j]].Capital)
	})
	tiers := make([]Option, 0, len(codes))
	for _, code := range codes {
		t := r.Tiers[code]
		tiers = append(tiers, Option{Value: code, Label: fmt.Sprintf("%s (capital %s FCFA)", t.Label, t.Capital.StringFixed(0))})
	}
	defTier := ""
	if len(codes) > 0 {
		defTier = codes[0]
	}

	return &Form{Product: domain.ProductFuneral, Title: domain.ProductFuneral.Label(), Fields: []Field{
		&ChoiceField{meta: meta{Name: "tier", Text: "Formule", Required: true}, Options: tiers, Default: defTier},
		&NumberField{meta: meta{Name: "principal_age", Text: "Âge de l'assuré principal", Required: true}, Min: num(18), Max: num(75), Integer: true, Unit: "ans"},
		&NumberField{meta: meta{Name: "spouse_age", Text: "Âge du conjoint", Help: "Laisser vide sans conjoint"}, Min: num(18), Max: num(75), Integer: true, Unit: "ans"},
		&NumberField{meta: meta{Name: "children", Text: "Nombre d'enfants"}, Min: num(0), Max: num(int64(r.MaxChildren)), Integer: true, Default: num(0)},
		&NumberField{meta: meta{Name: "parents", Text: "Nombre d'ascendants"}, Min: num(0), Max: num(int64(r.MaxParents)), Integer: true, Default: num(0)},
		frequencyField(),
	}}
}

// BuildRequest converts parsed values into the calculator input of product
func BuildRequest(p domain.Product, v Values) (*domain.QuoteRequest, error) {
	req := &domain.QuoteRequest{Product: p}
	switch p {
	case domain.ProductAuto:
		req.Auto = &domain.AutoInput{
			FiscalPower:     v.Int("fiscal_power"),
			Usage:           v.String("usage"),
			Seats:           v.Int("seats"),
			BonusMalus:      v.String("bonus_malus"),
			DurationMonths:  v.Int("duration_months"),
			VehicleValue:    v.Decimal("vehicle_value"),
			Franchise:       v.Decimal("franchise"),
			Coverages:       v.Strings("coverages"),
			CrossBorderCard: v.Bool("cross_border_card"),
		}
	case domain.ProductSavings:
		req.Savings = &domain.SavingsInput{
			MonthlyContribution: v.Decimal("monthly_contribution"),
			DurationYears:       v.Int("duration_years"),
		}
	case domain.ProductEducation:
		req.Education = &domain.EducationInput{
			MonthlyContribution: v.Decimal("monthly_contribution"),
			DeferredYears:       v.Int("deferred_years"),
			RentYears:           v.Int("rent_years"),
		}
	case domain.ProductMoloMolo:
		req.MoloMolo = &domain.MoloMoloInput{
			Contribution:  v.Decimal("contribution"),
			Frequency:     domain.Frequency(v.String("frequency")),
			DurationYears: v.Int("duration_years"),
		}
	case domain.ProductFuneral:
		in := &domain.FuneralInput{
			Tier:         v.String("tier"),
			PrincipalAge: v.Int("principal_age"),
			Children:     v.Int("children"),
			Parents:      v.Int("parents"),
			Frequency:    domain.Frequency(v.String("frequency")),
		}
		if v.Has("spouse_age") {
			in.SpouseAges = []int{v.Int("spouse_age")}
		}
		req.Funeral = in
	default:
		return nil, fmt.Errorf("form: unknown product %q", p)
	}
	return req, nil
}

// ValuesFromRequest extracts raw form values from a request, the inverse of
// BuildRequest. Interactive clients use it to prefill a form.
func ValuesFromRequest(req *domain.QuoteRequest) map[string]interface{} {
	raw := map[string]interface{}{}
	switch {
	case req == nil:
	case req.Auto != nil:
		a := req.Auto
		raw["fiscal_power"] = a.FiscalPower
		raw["usage"] = a.Usage
		raw["seats"] = a.Seats
		raw["bonus_malus"] = a.BonusMalus
		raw["duration_months"] = a.DurationMonths
		raw["vehicle_value"] = a.VehicleValue
		raw["franchise"] = a.Franchise
		raw["coverages"] = append([]string(nil), a.Coverages...)
		raw["cross_border_card"] = a.CrossBorderCard
	case req.Savings != nil:
		raw["monthly_contribution"] = req.Savings.MonthlyContribution
		raw["duration_years"] = req.Savings.DurationYears
	case req.Education != nil:
		raw["monthly_contribution"] = req.Education.MonthlyContribution
		raw["deferred_years"] = req.Education.DeferredYears
		if req.Education.RentYears > 0 {
			raw["rent_years"] = req.Education.RentYears
		}
	case req.MoloMolo != nil:
		raw["contribution"] = req.MoloMolo.Contribution
		raw["frequency"] = string(req.MoloMolo.Frequency)
		raw["duration_years"] = req.MoloMolo.DurationYears
	case req.Funeral != nil:
		f := req.Funeral
		raw["tier"] = f.Tier
		raw["principal_age"] = f.PrincipalAge
		if len(f.SpouseAges) > 0 {
			raw["spouse_age"] = f.SpouseAges[0]
		}
		raw["children"] = f.Children
		raw["parents"] = f.Parents
		raw["frequency"] = string(f.Frequency)
	}
	return raw
}
