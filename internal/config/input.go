package config

import (
	"fmt"
	"os"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing and validation of quote request files
type InputParser struct {
	Rates *domain.RateTables
}

// NewInputParser creates a new input parser validating against rates
func NewInputParser(rates *domain.RateTables) *InputParser {
	return &InputParser{Rates: rates}
}

// LoadFromFile loads a quote request from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.QuoteRequest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a quote request
func (ip *InputParser) Parse(data []byte) (*domain.QuoteRequest, error) {
	var req domain.QuoteRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateRequest(&req); err != nil {
		return nil, fmt.Errorf("quote request validation failed: %w", err)
	}

	return &req, nil
}

// ValidateRequest checks the section matching the request product
func (ip *InputParser) ValidateRequest(req *domain.QuoteRequest) error {
	if req == nil {
		return domain.NewValidationError("", "request is empty")
	}
	if !req.Product.Valid() {
		return domain.NewValidationError("product", "unknown product %q", req.Product)
	}

	switch req.Product {
	case domain.ProductAuto:
		if req.Auto == nil {
			return domain.NewValidationError("auto", "section is required")
		}
		return ip.validateAuto(req.Auto)
	case domain.ProductSavings:
		if req.Savings == nil {
			return domain.NewValidationError("epargne", "section is required")
		}
		return ip.validateSavings(req.Savings)
	case domain.ProductEducation:
		if req.Education == nil {
			return domain.NewValidationError("education", "section is required")
		}
		return ip.validateEducation(req.Education)
	case domain.ProductMoloMolo:
		if req.MoloMolo == nil {
			return domain.NewValidationError("molo_molo", "section is required")
		}
		return ip.validateMoloMolo(req.MoloMolo)
	case domain.ProductFuneral:
		if req.Funeral == nil {
			return domain.NewValidationError("obseques", "section is required")
		}
		return ip.validateFuneral(req.Funeral)
	}
	return nil
}

func (ip *InputParser) validateAuto(in *domain.AutoInput) error {
	rates := ip.Rates.Auto
	if in.FiscalPower < 1 || in.FiscalPower > 99 {
		return domain.NewValidationError("auto.fiscal_power", "must be between 1 and 99, got %d", in.FiscalPower)
	}
	if _, ok := rates.Usage.Values[in.Usage]; !ok {
		return domain.NewValidationError("auto.usage", "unknown usage %q", in.Usage)
	}
	if in.Seats < 1 || in.Seats > 100 {
		return domain.NewValidationError("auto.seats", "must be between 1 and 100, got %d", in.Seats)
	}
	if _, ok := rates.BonusMalus.Values[in.BonusMalus]; !ok {
		return domain.NewValidationError("auto.bonus_malus", "unknown class %q", in.BonusMalus)
	}
	if in.DurationMonths < 1 || in.DurationMonths > 12 {
		return domain.NewValidationError("auto.duration_months", "must be between 1 and 12, got %d", in.DurationMonths)
	}
	if in.VehicleValue.IsNegative() {
		return domain.NewValidationError("auto.vehicle_value", "cannot be negative")
	}
	if in.Franchise.IsNegative() {
		return domain.NewValidationError("auto.franchise", "cannot be negative")
	}
	for _, code := range in.Coverages {
		cov, ok := rates.Coverages[code]
		if !ok {
			return domain.NewValidationError("auto.coverages", "unknown coverage %q", code)
		}
		if cov.Rate.IsPositive() && !in.VehicleValue.IsPositive() {
			return domain.NewValidationError("auto.vehicle_value", "required for coverage %q", code)
		}
	}
	return nil
}

func validateContribution(field string, amount decimal.Decimal, rates domain.CapitalisationRates) error {
	if !amount.IsPositive() {
		return domain.NewValidationError(field, "must be positive")
	}
	if !amount.Equal(amount.Floor()) {
		return domain.NewValidationError(field, "must be a whole number of francs")
	}
	if amount.LessThan(rates.MinContribution) {
		return domain.NewValidationError(field, "minimum is %s", rates.MinContribution)
	}
	return nil
}

func validateYears(field string, years int, rates domain.CapitalisationRates) error {
	if years < 1 || years > rates.MaxYears {
		return domain.NewValidationError(field, "must be between 1 and %d, got %d", rates.MaxYears, years)
	}
	return nil
}

func (ip *InputParser) validateSavings(in *domain.SavingsInput) error {
	r := ip.Rates.Savings.CapitalisationRates
	if err := validateContribution("epargne.monthly_contribution", in.MonthlyContribution, r); err != nil {
		return err
	}
	return validateYears("epargne.duration_years", in.DurationYears, r)
}

func (ip *InputParser) validateEducation(in *domain.EducationInput) error {
	r := ip.Rates.Education
	if err := validateContribution("education.monthly_contribution", in.MonthlyContribution, r.CapitalisationRates); err != nil {
		return err
	}
	if err := validateYears("education.deferred_years", in.DeferredYears, r.CapitalisationRates); err != nil {
		return err
	}
	if in.RentYears < 0 || in.RentYears > r.MaxRentYears {
		return domain.NewValidationError("education.rent_years", "must be between 0 and %d, got %d", r.MaxRentYears, in.RentYears)
	}
	return nil
}

func (ip *InputParser) validateMoloMolo(in *domain.MoloMoloInput) error {
	r := ip.Rates.MoloMolo.CapitalisationRates
	if err := validateContribution("molo_molo.contribution", in.Contribution, r); err != nil {
		return err
	}
	if in.Frequency == "" {
		in.Frequency = domain.FrequencyMonthly
	}
	if in.Frequency.PaymentsPerYear() == 0 {
		return domain.NewValidationError("molo_molo.frequency", "unknown frequency %q", in.Frequency)
	}
	return validateYears("molo_molo.duration_years", in.DurationYears, r)
}

func (ip *InputParser) validateFuneral(in *domain.FuneralInput) error {
	r := ip.Rates.Funeral
	if _, ok := r.Tiers[in.Tier]; !ok {
		return domain.NewValidationError("obseques.tier", "unknown tier %q", in.Tier)
	}
	if in.PrincipalAge < 18 || in.PrincipalAge > 75 {
		return domain.NewValidationError("obseques.principal_age", "must be between 18 and 75, got %d", in.PrincipalAge)
	}
	for i, age := range in.SpouseAges {
		if age < 18 || age > 75 {
			return domain.NewValidationError(fmt.Sprintf("obseques.spouse_ages[%d]", i), "must be between 18 and 75, got %d", age)
		}
	}
	if in.Children < 0 || in.Children > r.MaxChildren {
		return domain.NewValidationError("obseques.children", "must be between 0 and %d", r.MaxChildren)
	}
	if in.Parents < 0 || in.Parents > r.MaxParents {
		return domain.NewValidationError("obseques.parents", "must be between 0 and %d", r.MaxParents)
	}
	if in.Frequency == "" {
		in.Frequency = domain.FrequencyMonthly
	}
	if in.Frequency.PaymentsPerYear() == 0 {
		return domain.NewValidationError("obseques.frequency", "unknown frequency %q", in.Frequency)
	}
	return nil
}
