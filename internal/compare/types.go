package compare

import (
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/output"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComparisonResult represents a single quote variant with calculated metrics
type ComparisonResult struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Product     domain.Product `json:"product"`
	Quote       *domain.Quote  `json:"quote,omitempty"`

	// Key Metrics
	TotalPayable       decimal.Decimal `json:"totalPayable"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalFees          decimal.Decimal `json:"totalFees"`
	FinalCapital       decimal.Decimal `json:"finalCapital"`
	Warnings           []string        `json:"warnings,omitempty"`

	// Comparison to Base
	TotalDiffFromBase   decimal.Decimal `json:"totalDiffFromBase"`
	TotalPctFromBase    decimal.Decimal `json:"totalPctFromBase"`
	CapitalDiffFromBase decimal.Decimal `json:"capitalDiffFromBase"`
	CapitalPctFromBase  decimal.Decimal `json:"capitalPctFromBase"`
}

// ComparisonSet represents a base quote and its variants
type ComparisonSet struct {
	BaseName           string             `json:"baseName"`
	Product            domain.Product     `json:"product"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	Source             string             `json:"source,omitempty"`
}

// MetricsCalculator extracts key metrics from quotes
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the comparison metrics of one quote
func (mc *MetricsCalculator) CalculateMetrics(name string, q *domain.Quote) ComparisonResult {
	result := ComparisonResult{
		Name:         name,
		Product:      q.Product,
		Quote:        q,
		TotalPayable: q.Breakdown.Total,
		FinalCapital: q.FinalCapital(),
		Warnings:     q.Warnings,
	}
	if q.Projection != nil {
		result.TotalContributions = q.Projection.TotalContributions
		result.TotalFees = q.Projection.TotalFees
	}
	return result
}

// CalculateComparison fills the deltas of variant against base
func (mc *MetricsCalculator) CalculateComparison(variant, base ComparisonResult) ComparisonResult {
	variant.TotalDiffFromBase = variant.TotalPayable.Sub(base.TotalPayable)
	if !base.TotalPayable.IsZero() {
		variant.TotalPctFromBase = variant.TotalDiffFromBase.Div(base.TotalPayable).Mul(hundred).Round(2)
	}

	variant.CapitalDiffFromBase = variant.FinalCapital.Sub(base.FinalCapital)
	if !base.FinalCapital.IsZero() {
		variant.CapitalPctFromBase = variant.CapitalDiffFromBase.Div(base.FinalCapital).Mul(hundred).Round(2)
	}
	return variant
}

// yield is final capital per franc contributed, zero without contributions
func yield(r ComparisonResult) decimal.Decimal {
	if r.TotalContributions.IsZero() {
		return decimal.Zero
	}
	return r.FinalCapital.Div(r.TotalContributions)
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if len(compSet.AlternativeResults) == 0 || compSet.BaseResult == nil {
		return recommendations
	}
	base := compSet.BaseResult

	cheapest := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.TotalPayable.LessThan(cheapest.TotalPayable) {
			cheapest = alt
		}
	}
	if cheapest != base {
		recommendations = append(recommendations,
			"Prime la plus basse : "+cheapest.Name+" économise "+
				output.FormatFCFA(base.TotalPayable.Sub(cheapest.TotalPayable))+" par rapport au devis de base")
	}

	if !compSet.Product.IsCapitalisation() {
		return recommendations
	}

	richest := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.FinalCapital.GreaterThan(richest.FinalCapital) {
			richest = alt
		}
	}
	if richest != base {
		recommendations = append(recommendations,
			"Capital le plus élevé : "+richest.Name+" constitue "+
				output.FormatFCFA(richest.FinalCapital.Sub(base.FinalCapital))+" de plus")
	}

	best := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if yield(*alt).GreaterThan(yield(*best)) {
			best = alt
		}
	}
	if best != base {
		recommendations = append(recommendations,
			"Meilleur rendement : "+best.Name+" rapporte "+
				yield(*best).Mul(hundred).StringFixed(1)+" FCFA de capital pour 100 FCFA cotisés")
	}

	return recommendations
}
