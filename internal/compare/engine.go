package compare

import (
	"context"
	"fmt"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/transform"
)

// RequestValidator checks a transformed request against the tariff in force
type RequestValidator interface {
	ValidateRequest(req *domain.QuoteRequest) error
}

// Variant is a named sequence of transforms applied to the base request
type Variant struct {
	Name        string
	Description string
	Transforms  []transform.QuoteTransform
}

// CompareEngine orchestrates quote variant comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
	// Validator, when set, rejects variants the tariff does not accept
	Validator RequestValidator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
	}
}

// Compare quotes base and each variant and reports the deltas
func (ce *CompareEngine) Compare(ctx context.Context, base *domain.QuoteRequest, variants []Variant) (*ComparisonSet, error) {
	if base == nil {
		return nil, fmt.Errorf("base request cannot be nil")
	}

	baseQuote, err := ce.quote(base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base quote: %w", err)
	}

	baseName := base.Name
	if baseName == "" {
		baseName = "base"
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(baseName, baseQuote)

	alternatives := make([]ComparisonResult, 0, len(variants))
	for i, v := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := v.Name
		if name == "" {
			name = fmt.Sprintf("variante_%d", i+1)
		}

		req, err := transform.ApplyTransforms(base, v.Transforms)
		if err != nil {
			return nil, fmt.Errorf("failed to apply variant %s: %w", name, err)
		}
		req.Name = name

		q, err := ce.quote(req)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate variant %s: %w", name, err)
		}

		alt := ce.MetricsCalculator.CalculateMetrics(name, q)
		alt.Description = v.Description
		if alt.Description == "" {
			alt.Description = transform.Describe(v.Transforms)
		}
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(alt, baseResult))
	}

	compSet := &ComparisonSet{
		BaseName:           baseName,
		Product:            base.Product,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

// CompareTemplates compares base against named built-in templates
func (ce *CompareEngine) CompareTemplates(ctx context.Context, base *domain.QuoteRequest, templates []string) (*ComparisonSet, error) {
	variants := make([]Variant, 0, len(templates))
	for _, name := range templates {
		tpl, ok := ce.TemplateRegistry.Get(name)
		if !ok {
			return nil, fmt.Errorf("template %s not found", name)
		}
		if base != nil && tpl.Product != base.Product {
			return nil, fmt.Errorf("template %s applies to %s, not %s", name, tpl.Product, base.Product)
		}
		variants = append(variants, Variant{Name: tpl.Name, Description: tpl.Description, Transforms: tpl.Transforms})
	}
	return ce.Compare(ctx, base, variants)
}

func (ce *CompareEngine) quote(req *domain.QuoteRequest) (*domain.Quote, error) {
	if ce.Validator != nil {
		if err := ce.Validator.ValidateRequest(req); err != nil {
			return nil, err
		}
	}
	return ce.CalcEngine.Quote(req)
}
