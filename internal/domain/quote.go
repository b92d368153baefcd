package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutoInput holds the motor quote parameters
type AutoInput struct {
	FiscalPower     int             `yaml:"fiscal_power" json:"fiscalPower"`
	Usage           string          `yaml:"usage" json:"usage"`
	Seats           int             `yaml:"seats" json:"seats"`
	BonusMalus      string          `yaml:"bonus_malus" json:"bonusMalus"`
	DurationMonths  int             `yaml:"duration_months" json:"durationMonths"`
	VehicleValue    decimal.Decimal `yaml:"vehicle_value" json:"vehicleValue"`
	Franchise       decimal.Decimal `yaml:"franchise" json:"franchise"`
	Coverages       []string        `yaml:"coverages" json:"coverages"`
	CrossBorderCard bool            `yaml:"cross_border_card" json:"crossBorderCard"`
}

// SavingsInput holds the Épargne Plus parameters
type SavingsInput struct {
	MonthlyContribution decimal.Decimal `yaml:"monthly_contribution" json:"monthlyContribution"`
	DurationYears       int             `yaml:"duration_years" json:"durationYears"`
}

// EducationInput holds the Plan Études parameters
type EducationInput struct {
	MonthlyContribution decimal.Decimal `yaml:"monthly_contribution" json:"monthlyContribution"`
	DeferredYears       int             `yaml:"deferred_years" json:"deferredYears"`
	RentYears           int             `yaml:"rent_years" json:"rentYears"` // 0 uses the tariff default
}

// MoloMoloInput holds the Molo Molo parameters
type MoloMoloInput struct {
	Contribution  decimal.Decimal `yaml:"contribution" json:"contribution"`
	Frequency     Frequency       `yaml:"frequency" json:"frequency"`
	DurationYears int             `yaml:"duration_years" json:"durationYears"`
}

// FuneralInput holds the Pack Obsèques parameters
type FuneralInput struct {
	Tier         string    `yaml:"tier" json:"tier"`
	PrincipalAge int       `yaml:"principal_age" json:"principalAge"`
	SpouseAges   []int     `yaml:"spouse_ages" json:"spouseAges"`
	Children     int       `yaml:"children" json:"children"`
	Parents      int       `yaml:"parents" json:"parents"`
	Frequency    Frequency `yaml:"frequency" json:"frequency"`
}

// QuoteRequest is a product-tagged calculation input. Exactly the section
// matching Product is read.
type QuoteRequest struct {
	Name      string          `yaml:"name,omitempty" json:"name,omitempty"`
	Product   Product         `yaml:"product" json:"product"`
	Auto      *AutoInput      `yaml:"auto,omitempty" json:"auto,omitempty"`
	Savings   *SavingsInput   `yaml:"epargne,omitempty" json:"epargne,omitempty"`
	Education *EducationInput `yaml:"education,omitempty" json:"education,omitempty"`
	MoloMolo  *MoloMoloInput  `yaml:"molo_molo,omitempty" json:"moloMolo,omitempty"`
	Funeral   *FuneralInput   `yaml:"obseques,omitempty" json:"obseques,omitempty"`
}

// DeepCopy returns an independent copy of the request
func (r *QuoteRequest) DeepCopy() *QuoteRequest {
	if r == nil {
		return nil
	}
	out := &QuoteRequest{Name: r.Name, Product: r.Product}
	if r.Auto != nil {
		a := *r.Auto
		a.Coverages = append([]string(nil), r.Auto.Coverages...)
		out.Auto = &a
	}
	if r.Savings != nil {
		s := *r.Savings
		out.Savings = &s
	}
	if r.Education != nil {
		e := *r.Education
		out.Education = &e
	}
	if r.MoloMolo != nil {
		m := *r.MoloMolo
		out.MoloMolo = &m
	}
	if r.Funeral != nil {
		f := *r.Funeral
		f.SpouseAges = append([]int(nil), r.Funeral.SpouseAges...)
		out.Funeral = &f
	}
	return out
}

// YearBreakdown is one simulated policy year of a capitalisation product
type YearBreakdown struct {
	Year            int             `json:"year"`
	Contributions   decimal.Decimal `json:"contributions"`
	FeeRate         decimal.Decimal `json:"feeRate"`
	Fees            decimal.Decimal `json:"fees"`
	NetContribution decimal.Decimal `json:"netContribution"`
	Interest        decimal.Decimal `json:"interest"`
	Capital         decimal.Decimal `json:"capital"`
}

// Projection is the year-by-year accumulation with its totals
type Projection struct {
	Rounding           RoundingMode    `json:"rounding"`
	InterestRate       decimal.Decimal `json:"interestRate"`
	Years              []YearBreakdown `json:"years"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalFees          decimal.Decimal `json:"totalFees"`
	TotalInterest      decimal.Decimal `json:"totalInterest"`
	FinalCapital       decimal.Decimal `json:"finalCapital"`
}

// LineKind classifies a breakdown line
type LineKind string

const (
	LinePremium LineKind = "premium"
	LineFee     LineKind = "fee"
	LineExtra   LineKind = "extra"
	LineLevy    LineKind = "levy"
	LineTax     LineKind = "tax"
)

// Line is one component of a payable total
type Line struct {
	Code   string          `json:"code"`
	Label  string          `json:"label"`
	Kind   LineKind        `json:"kind"`
	Base   decimal.Decimal `json:"base"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// PremiumBreakdown is the final payable amount and its components.
// Total always equals the sum of line amounts.
type PremiumBreakdown struct {
	Product    Product         `json:"product"`
	NetPremium decimal.Decimal `json:"netPremium"`
	Lines      []Line          `json:"lines"`
	Total      decimal.Decimal `json:"total"`
}

// Sum adds all line amounts
func (b PremiumBreakdown) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range b.Lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}

// Line returns the line with the given code
func (b PremiumBreakdown) Line(code string) (Line, bool) {
	for _, l := range b.Lines {
		if l.Code == code {
			return l, true
		}
	}
	return Line{}, false
}

// AmountOf returns the summed amount of all lines of a kind
func (b PremiumBreakdown) AmountOf(kind LineKind) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range b.Lines {
		if l.Kind == kind {
			sum = sum.Add(l.Amount)
		}
	}
	return sum
}

// Resolution records which tariff entry was used for an input value
type Resolution struct {
	Table    string          `json:"table"`
	Key      string          `json:"key"`
	Value    decimal.Decimal `json:"value"`
	Fallback bool            `json:"fallback"`
}

// CoverageAmount is a priced optional coverage
type CoverageAmount struct {
	Code   string          `json:"code"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// AutoDetail explains how the motor net premium was built
type AutoDetail struct {
	PrimeRC    decimal.Decimal  `json:"primeRC"`
	RCBase     Resolution       `json:"rcBase"`
	Usage      Resolution       `json:"usage"`
	Seats      Resolution       `json:"seats"`
	BonusMalus Resolution       `json:"bonusMalus"`
	Duration   Resolution       `json:"duration"`
	Franchise  Resolution       `json:"franchise"`
	Coverages  []CoverageAmount `json:"coverages"`
}

// EducationDetail holds the rent phase of a Plan Études
type EducationDetail struct {
	RentYears  int             `json:"rentYears"`
	AnnualRent decimal.Decimal `json:"annualRent"`
	TotalRent  decimal.Decimal `json:"totalRent"`
}

// MoloMoloDetail holds Molo Molo derived figures
type MoloMoloDetail struct {
	PaymentsPerYear    int             `json:"paymentsPerYear"`
	AnnualContribution decimal.Decimal `json:"annualContribution"`
	DeathBenefit       decimal.Decimal `json:"deathBenefit"`
}

// MemberPremium is the monthly rate of one insured member
type MemberPremium struct {
	Role    string          `json:"role"`
	Age     int             `json:"age,omitempty"`
	Monthly decimal.Decimal `json:"monthly"`
}

// FuneralDetail explains a Pack Obsèques premium
type FuneralDetail struct {
	Tier            string          `json:"tier"`
	Capital         decimal.Decimal `json:"capital"`
	Members         []MemberPremium `json:"members"`
	MonthlyTotal    decimal.Decimal `json:"monthlyTotal"`
	Frequency       Resolution      `json:"frequency"`
	PaymentsPerYear int             `json:"paymentsPerYear"`
	Installment     decimal.Decimal `json:"installment"`
	AnnualPremium   decimal.Decimal `json:"annualPremium"`
}

// Quote is the result of one premium calculation
type Quote struct {
	ID         string           `json:"id,omitempty"`
	Product    Product          `json:"product"`
	CreatedAt  time.Time        `json:"createdAt"`
	Request    QuoteRequest     `json:"request"`
	Breakdown  PremiumBreakdown `json:"breakdown"`
	Projection *Projection      `json:"projection,omitempty"`
	Auto       *AutoDetail      `json:"auto,omitempty"`
	Education  *EducationDetail `json:"education,omitempty"`
	MoloMolo   *MoloMoloDetail  `json:"moloMolo,omitempty"`
	Funeral    *FuneralDetail   `json:"funeral,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// FinalCapital returns the projected capital, or zero for non-capitalisation products
func (q *Quote) FinalCapital() decimal.Decimal {
	if q == nil || q.Projection == nil {
		return decimal.Zero
	}
	return q.Projection.FinalCapital
}
