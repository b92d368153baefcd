package form

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForProduct_AllProductsDescribe(t *testing.T) {
	rates := calculation.DefaultRateTables()
	for _, p := range domain.AllProducts() {
		f, err := ForProduct(p, rates)
		require.NoError(t, err, "product %s", p)

		spec, err := f.Describe()
		require.NoError(t, err)
		assert.Equal(t, p, spec.Product)
		assert.Len(t, spec.Fields, len(f.Fields))
		for _, fs := range spec.Fields {
			assert.NotEmpty(t, fs.Key)
			assert.NotEmpty(t, fs.Label)
			assert.Contains(t, []Kind{KindNumber, KindChoice, KindToggle, KindMultiChoice}, fs.Kind)
		}
	}

	_, err := ForProduct("habitation", rates)
	assert.Error(t, err)
}

func TestForm_AutoFromJSON(t *testing.T) {
	f, err := ForProduct(domain.ProductAuto, calculation.DefaultRateTables())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"fiscal_power": 7,
		"usage": "prive",
		"bonus_malus": "neutre",
		"vehicle_value": "4 500 000",
		"coverages": ["vol", "assistance"],
		"cross_border_card": "oui"
	}`), &raw))

	req, err := f.Request(raw)
	require.NoError(t, err)
	require.NotNil(t, req.Auto)
	assert.Equal(t, 7, req.Auto.FiscalPower)
	assert.Equal(t, 5, req.Auto.Seats, "default applied")
	assert.Equal(t, 12, req.Auto.DurationMonths, "default applied")
	assert.True(t, req.Auto.VehicleValue.Equal(decimal.NewFromInt(4500000)))
	assert.Equal(t, []string{"vol", "assistance"}, req.Auto.Coverages)
	assert.True(t, req.Auto.CrossBorderCard)

	parser := config.NewInputParser(calculation.DefaultRateTables())
	assert.NoError(t, parser.ValidateRequest(req), "form output must satisfy request validation")
}

func TestForm_ParseErrors(t *testing.T) {
	f, err := ForProduct(domain.ProductAuto, calculation.DefaultRateTables())
	require.NoError(t, err)

	tests := []struct {
		name  string
		raw   map[string]interface{}
		field string
	}{
		{"missing required", map[string]interface{}{}, "fiscal_power"},
		{"blank required", map[string]interface{}{"fiscal_power": "  "}, "fiscal_power"},
		{"not a number", map[string]interface{}{"fiscal_power": "sept"}, "fiscal_power"},
		{"fractional", map[string]interface{}{"fiscal_power": 7.5}, "fiscal_power"},
		{"above max", map[string]interface{}{"fiscal_power": 120}, "fiscal_power"},
		{"unknown choice", map[string]interface{}{"fiscal_power": 7, "usage": "corbillard"}, "usage"},
		{"bad toggle", map[string]interface{}{"fiscal_power": 7, "cross_border_card": "peut-être"}, "cross_border_card"},
		{"unknown coverage", map[string]interface{}{"fiscal_power": 7, "coverages": []interface{}{"parapluie"}}, "coverages"},
		{"duplicate coverage", map[string]interface{}{"fiscal_power": 7, "coverages": "vol, vol"}, "coverages"},
		{"non string coverage", map[string]interface{}{"fiscal_power": 7, "coverages": []interface{}{3.0}}, "coverages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Parse(tt.raw)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestForm_FuneralSpouseOptional(t *testing.T) {
	f, err := ForProduct(domain.ProductFuneral, calculation.DefaultRateTables())
	require.NoError(t, err)

	req, err := f.Request(map[string]interface{}{"principal_age": "52", "children": "3"})
	require.NoError(t, err)
	assert.Equal(t, "essentiel", req.Funeral.Tier, "cheapest tier is the default")
	assert.Empty(t, req.Funeral.SpouseAges)
	assert.Equal(t, 3, req.Funeral.Children)
	assert.Equal(t, domain.FrequencyMonthly, req.Funeral.Frequency)

	req, err = f.Request(map[string]interface{}{"principal_age": 52, "spouse_age": 47, "tier": "prestige"})
	require.NoError(t, err)
	assert.Equal(t, []int{47}, req.Funeral.SpouseAges)
}

func TestValuesFromRequest_RoundTrip(t *testing.T) {
	rates := calculation.DefaultRateTables()
	requests := []*domain.QuoteRequest{
		{Product: domain.ProductAuto, Auto: &domain.AutoInput{FiscalPower: 9, Usage: "taxi", Seats: 5, BonusMalus: "bonus_10", DurationMonths: 6, Coverages: []string{"assistance"}}},
		{Product: domain.ProductEducation, Education: &domain.EducationInput{MonthlyContribution: decimal.NewFromInt(15000), DeferredYears: 12, RentYears: 4}},
		{Product: domain.ProductMoloMolo, MoloMolo: &domain.MoloMoloInput{Contribution: decimal.NewFromInt(3000), Frequency: domain.FrequencyQuarterly, DurationYears: 7}},
		{Product: domain.ProductFuneral, Funeral: &domain.FuneralInput{Tier: "confort", PrincipalAge: 40, SpouseAges: []int{35}, Parents: 2, Frequency: domain.FrequencyAnnual}},
	}
	for _, want := range requests {
		f, err := ForProduct(want.Product, rates)
		require.NoError(t, err)

		got, err := f.Request(ValuesFromRequest(want))
		require.NoError(t, err, "product %s", want.Product)
		assert.Equal(t, want.Product, got.Product)

		engine := calculation.NewCalculationEngine()
		a, err := engine.Quote(want)
		require.NoError(t, err)
		b, err := engine.Quote(got)
		require.NoError(t, err)
		assert.True(t, a.Breakdown.Total.Equal(b.Breakdown.Total), "product %s", want.Product)
	}
}

type rogueField struct{ meta }

func (rogueField) Kind() Kind { return "slider" }

func TestUnhandledFieldKind(t *testing.T) {
	f := &Form{Product: domain.ProductSavings, Fields: []Field{rogueField{meta{Name: "x", Text: "X"}}}}

	_, err := f.Describe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhandled field kind")

	_, err = f.Parse(map[string]interface{}{"x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhandled field kind")
}
