package transform

import (
	"fmt"
	"slices"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/output"
	"github.com/shopspring/decimal"
)

// requireSection checks base carries the input section for one of products
func requireSection(name string, base *domain.QuoteRequest, products ...domain.Product) error {
	if base == nil {
		return NewTransformError(name, "validate", "base request is nil", nil)
	}
	if !slices.Contains(products, base.Product) {
		return NewTransformError(name, "validate", fmt.Sprintf("not applicable to product %s", base.Product), nil)
	}
	present := false
	switch base.Product {
	case domain.ProductAuto:
		present = base.Auto != nil
	case domain.ProductSavings:
		present = base.Savings != nil
	case domain.ProductEducation:
		present = base.Education != nil
	case domain.ProductMoloMolo:
		present = base.MoloMolo != nil
	case domain.ProductFuneral:
		present = base.Funeral != nil
	}
	if !present {
		return NewTransformError(name, "validate", fmt.Sprintf("request has no %s section", base.Product), nil)
	}
	return nil
}

// SetDuration changes the contract length. Years drive savings and Molo Molo
// durations and the education deferral; Months drive motor contracts.
type SetDuration struct {
	Years  int
	Months int
}

func (t *SetDuration) Name() string { return "set_duration" }

func (t *SetDuration) Description() string {
	if t.Months > 0 {
		return fmt.Sprintf("Durée %d mois", t.Months)
	}
	return fmt.Sprintf("Durée %d ans", t.Years)
}

func (t *SetDuration) Validate(base *domain.QuoteRequest) error {
	if err := requireSection(t.Name(), base, domain.ProductAuto, domain.ProductSavings, domain.ProductEducation, domain.ProductMoloMolo); err != nil {
		return err
	}
	if base.Product == domain.ProductAuto {
		if t.Months < 1 || t.Months > 12 {
			return NewTransformError(t.Name(), "validate", fmt.Sprintf("motor duration must be 1-12 months, got %d", t.Months), nil)
		}
		return nil
	}
	if t.Years < 1 {
		return NewTransformError(t.Name(), "validate", fmt.Sprintf("duration must be at least one year, got %d", t.Years), nil)
	}
	return nil
}

func (t *SetDuration) Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error) {
	if err := t.Validate(base); err != nil {
		return nil, err
	}
	out := base.DeepCopy()
	switch out.Product {
	case domain.ProductAuto:
		out.Auto.DurationMonths = t.Months
	case domain.ProductSavings:
		out.Savings.DurationYears = t.Years
	case domain.ProductEducation:
		out.Education.DeferredYears = t.Years
	case domain.ProductMoloMolo:
		out.MoloMolo.DurationYears = t.Years
	}
	return out, nil
}

// SetContribution changes the periodic contribution of a capitalisation product
type SetContribution struct {
	Amount decimal.Decimal
}

func (t *SetContribution) Name() string { return "set_contribution" }

func (t *SetContribution) Description() string {
	return "Cotisation " + output.FormatFCFA(t.Amount)
}

func (t *SetContribution) Validate(base *domain.QuoteRequest) error {
	if err := requireSection(t.Name(), base, domain.ProductSavings, domain.ProductEducation, domain.ProductMoloMolo); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return NewTransformError(t.Name(), "validate", "contribution must be positive", nil)
	}
	return nil
}

func (t *SetContribution) Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error) {
	if err := t.Validate(base); err != nil {
		return nil, err
	}
	out := base.DeepCopy()
	switch out.Product {
	case domain.ProductSavings:
		out.Savings.MonthlyContribution = t.Amount
	case domain.ProductEducation:
		out.Education.MonthlyContribution = t.Amount
	case domain.ProductMoloMolo:
		out.MoloMolo.Contribution = t.Amount
	}
	return out, nil
}

// AddCoverage subscribes an optional motor coverage
type AddCoverage struct {
	Code string
}

func (t *AddCoverage) Name() string { return "add_coverage" }

func (t *AddCoverage) Description() string { return "Ajout garantie " + t.Code }

func (t *AddCoverage) Validate(base *domain.QuoteRequest) error {
	if err := requireSection(t.Name(), base, domain.ProductAuto); err != nil {
		return err
	}
	if t.Code == "" {
		return NewTransformError(t.Name(), "validate", "coverage code required", nil)
	}
	if slices.Contains(base.Auto.Coverages, t.Code) {
		return NewTransformError(t.Name(), "validate", fmt.Sprintf("coverage %s already subscribed", t.Code), nil)
	}
	return nil
}

func (t *AddCoverage) Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error) {
	if err := t.Validate(base); err != nil {
		return nil, err
	}
	out := base.DeepCopy()
	out.Auto.Coverages = append(out.Auto.Coverages, t.Code)
	return out, nil
}

// RemoveCoverage drops a subscribed motor coverage
type RemoveCoverage struct {
	Code string
}

func (t *RemoveCoverage) Name() string { return "remove_coverage" }

func (t *RemoveCoverage) Description() string { return "Retrait garantie " + t.Code }

func (t *RemoveCoverage) Validate(base *domain.QuoteRequest) error {
	if err := requireSection(t.Name(), base, domain.ProductAuto); err != nil {
		return err
	}
	if !slices.Contains(base.Auto.Coverages, t.Code) {
		return NewTransformError(t.Name(), "validate", fmt.Sprintf("coverage %s is not subscribed", t.Code), nil)
	}
	return nil
}

func (t *RemoveCoverage) Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error) {
	if err := t.Validate(base); err != nil {
		return nil, err
	}
	out := base.DeepCopy()
	out.Auto.Coverages = slices.DeleteFunc(out.Auto.Coverages, func(c string) bool { return c == t.Code })
	return out, nil
}

// SetBonusMalus changes the driver's bonus-malus class
type SetBonusMalus struct {
	Class string
}

func (t *SetBonusMalus) Name() string { return "set_bonus_malus" }

func (t *SetBonusMalus) Description() string { return "Bonus-malus " + t.Class }

func (t *SetBonusMalus) Validate(base *domain.QuoteRequest) error {
	if err := requireSection(t.Name(), base, domain.ProductAuto); err != nil {
		return err
	}
	if t.Class == "" {
		return NewTransformError(t.Name(), "validate", "bonus-malus class required", nil)
	}
	return nil
}

func (t *SetBonusMalus) Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error) {
	if err := t.Validate(base); err != nil {
		return nil, err
	}
	out := base.DeepCopy()
	out.Auto.BonusMalus = t.Class
	return out, nil
}

// SetTier switches the funeral formula
type SetTier struct {
	Tier string
}

func (t *SetTier) Name() string { return "set_tier" }

func (t *SetTier) Description() string { return "Formule " + t.Tier }

func (t *SetTier) Validate(base *domain.QuoteRequest) error {
	if err := requireSection(t.Name(), base, domain.ProductFuneral); err != nil {
		return err
	}
	if t.Tier == "" {
		return NewTransformError(t.Name(), "validate", "tier required", nil)
	}
	return nil
}

func (t *SetTier) Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error) {
	if err := t.Validate(base); err != nil {
		return nil, err
	}
	out := base.DeepCopy()
	out.Funeral.Tier = t.Tier
	return out, nil
}

// SetFrequency changes the payment frequency of Molo Molo or funeral contracts
type SetFrequency struct {
	Frequency domain.Frequency
}

func (t *SetFrequency) Name() string { return "set_frequency" }

func (t *SetFrequency) Description() string { return "Périodicité " + string(t.Frequency) }

func (t *SetFrequency) Validate(base *domain.QuoteRequest) error {
	if err := requireSection(t.Name(), base, domain.ProductMoloMolo, domain.ProductFuneral); err != nil {
		return err
	}
	if t.Frequency.PaymentsPerYear() == 0 {
		return NewTransformError(t.Name(), "validate", fmt.Sprintf("unknown frequency %q", t.Frequency), nil)
	}
	return nil
}

func (t *SetFrequency) Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error) {
	if err := t.Validate(base); err != nil {
		return nil, err
	}
	out := base.DeepCopy()
	if out.Product == domain.ProductMoloMolo {
		out.MoloMolo.Frequency = t.Frequency
	} else {
		out.Funeral.Frequency = t.Frequency
	}
	return out, nil
}

// SetRentYears changes how many years the education rent is paid out
type SetRentYears struct {
	Years int
}

func (t *SetRentYears) Name() string { return "set_rent_years" }

func (t *SetRentYears) Description() string { return fmt.Sprintf("Rente sur %d ans", t.Years) }

func (t *SetRentYears) Validate(base *domain.QuoteRequest) error {
	if err := requireSection(t.Name(), base, domain.ProductEducation); err != nil {
		return err
	}
	if t.Years < 1 {
		return NewTransformError(t.Name(), "validate", fmt.Sprintf("rent must last at least one year, got %d", t.Years), nil)
	}
	return nil
}

func (t *SetRentYears) Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error) {
	if err := t.Validate(base); err != nil {
		return nil, err
	}
	out := base.DeepCopy()
	out.Education.RentYears = t.Years
	return out, nil
}
