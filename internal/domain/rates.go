package domain

import (
	"github.com/shopspring/decimal"
)

// RateTables contains every tariff used by the premium calculators.
// Defaults are compiled in; a rates.yaml file may overlay any part of it.
type RateTables struct {
	Metadata  RateMetadata   `yaml:"metadata" json:"metadata"`
	Auto      AutoRates      `yaml:"auto" json:"auto"`
	Savings   SavingsRates   `yaml:"epargne" json:"epargne"`
	Education EducationRates `yaml:"education" json:"education"`
	MoloMolo  MoloMoloRates  `yaml:"molo_molo" json:"molo_molo"`
	Funeral   FuneralRates   `yaml:"obseques" json:"obseques"`
}

// RateMetadata describes the tariff release
type RateMetadata struct {
	Version       string `yaml:"version" json:"version"`
	EffectiveDate string `yaml:"effective_date" json:"effective_date"`
	Currency      string `yaml:"currency" json:"currency"`
	Description   string `yaml:"description" json:"description"`
}

// Bracket maps an inclusive integer range to a value. A nil Max marks the
// unbounded top bracket.
type Bracket struct {
	Label string          `yaml:"label" json:"label"`
	Min   int64           `yaml:"min" json:"min"`
	Max   *int64          `yaml:"max,omitempty" json:"max,omitempty"`
	Value decimal.Decimal `yaml:"value" json:"value"`
}

// Contains reports whether v lies within the bracket bounds
func (b Bracket) Contains(v int64) bool {
	if v < b.Min {
		return false
	}
	return b.Max == nil || v <= *b.Max
}

// BracketTable is an ordered list of contiguous brackets
type BracketTable struct {
	Name     string    `yaml:"name" json:"name"`
	Brackets []Bracket `yaml:"brackets" json:"brackets"`
}

// KeyedTable maps a category key to a coefficient with an explicit default
type KeyedTable struct {
	Name    string                     `yaml:"name" json:"name"`
	Values  map[string]decimal.Decimal `yaml:"values" json:"values"`
	Default decimal.Decimal            `yaml:"default" json:"default"`
}

// CoverageRate prices an optional coverage either as a flat amount or as a
// rate of the vehicle value
type CoverageRate struct {
	Label  string          `yaml:"label" json:"label"`
	Flat   decimal.Decimal `yaml:"flat" json:"flat"`
	Rate   decimal.Decimal `yaml:"rate" json:"rate"`
	Damage bool            `yaml:"damage" json:"damage"` // subject to the franchise coefficient
}

// FixedFee is a flat amount added to the payable total
type FixedFee struct {
	Code   string          `yaml:"code" json:"code"`
	Label  string          `yaml:"label" json:"label"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// LevyRule is a percentage-of-net surcharge with a minimum flat amount
type LevyRule struct {
	Code  string          `yaml:"code" json:"code"`
	Label string          `yaml:"label" json:"label"`
	Rate  decimal.Decimal `yaml:"rate" json:"rate"`
	Floor decimal.Decimal `yaml:"floor" json:"floor"`
}

// TaxRule is a percentage tax on the net premium, optionally including fixed fees
type TaxRule struct {
	Code        string          `yaml:"code" json:"code"`
	Label       string          `yaml:"label" json:"label"`
	Rate        decimal.Decimal `yaml:"rate" json:"rate"`
	IncludeFees bool            `yaml:"include_fees" json:"include_fees"`
}

// FeeSchedule lists the fees, levies and taxes applied on top of a net premium
type FeeSchedule struct {
	Fees   []FixedFee `yaml:"fees" json:"fees"`
	Levies []LevyRule `yaml:"levies" json:"levies"`
	Taxes  []TaxRule  `yaml:"taxes" json:"taxes"`
}

// AutoRates contains the motor tariff
type AutoRates struct {
	RCBase          BracketTable            `yaml:"rc_base" json:"rc_base"`
	Usage           KeyedTable              `yaml:"usage" json:"usage"`
	Seats           BracketTable            `yaml:"seats" json:"seats"`
	BonusMalus      KeyedTable              `yaml:"bonus_malus" json:"bonus_malus"`
	Duration        BracketTable            `yaml:"duration" json:"duration"`
	Franchise       BracketTable            `yaml:"franchise" json:"franchise"`
	Coverages       map[string]CoverageRate `yaml:"coverages" json:"coverages"`
	Fees            FeeSchedule             `yaml:"fees" json:"fees"`
	CrossBorderCard FixedFee                `yaml:"cross_border_card" json:"cross_border_card"`
}

// CapitalisationRates is shared by products that accumulate capital
type CapitalisationRates struct {
	FeeByYear       BracketTable    `yaml:"fee_by_year" json:"fee_by_year"`
	InterestRate    decimal.Decimal `yaml:"interest_rate" json:"interest_rate"`
	AdhesionFee     decimal.Decimal `yaml:"adhesion_fee" json:"adhesion_fee"`
	MinContribution decimal.Decimal `yaml:"min_contribution" json:"min_contribution"`
	MaxYears        int             `yaml:"max_years" json:"max_years"`
	Rounding        RoundingMode    `yaml:"rounding" json:"rounding"`
}

// SavingsRates contains the Épargne Plus tariff
type SavingsRates struct {
	CapitalisationRates `yaml:",inline"`
}

// EducationRates contains the Plan Études tariff
type EducationRates struct {
	CapitalisationRates `yaml:",inline"`
	DefaultRentYears    int `yaml:"default_rent_years" json:"default_rent_years"`
	MaxRentYears        int `yaml:"max_rent_years" json:"max_rent_years"`
}

// MoloMoloRates contains the Molo Molo micro-savings tariff
type MoloMoloRates struct {
	CapitalisationRates  `yaml:",inline"`
	DeathBenefitMultiple decimal.Decimal `yaml:"death_benefit_multiple" json:"death_benefit_multiple"`
}

// FuneralTier is one Pack Obsèques formula
type FuneralTier struct {
	Label          string          `yaml:"label" json:"label"`
	Capital        decimal.Decimal `yaml:"capital" json:"capital"`
	PrincipalByAge BracketTable    `yaml:"principal_by_age" json:"principal_by_age"`
	Child          decimal.Decimal `yaml:"child" json:"child"`
	Parent         decimal.Decimal `yaml:"parent" json:"parent"`
}

// FuneralRates contains the Pack Obsèques tariff
type FuneralRates struct {
	Tiers       map[string]FuneralTier `yaml:"tiers" json:"tiers"`
	Frequency   KeyedTable             `yaml:"frequency" json:"frequency"`
	Fees        FeeSchedule            `yaml:"fees" json:"fees"`
	MaxChildren int                    `yaml:"max_children" json:"max_children"`
	MaxParents  int                    `yaml:"max_parents" json:"max_parents"`
}
