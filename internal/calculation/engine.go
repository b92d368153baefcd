package calculation

import (
	"errors"
	"fmt"
	"time"

	"github.com/assurlink/courtage/internal/domain"
)

// ErrMissingInput is returned when a request lacks the section for its product
var ErrMissingInput = errors.New("missing product input")

// RatesProvider supplies the tariff in force. Implementations may swap the
// tables between calls; a single quote always uses one snapshot.
type RatesProvider interface {
	Rates() *domain.RateTables
}

// StaticRates serves a fixed set of rate tables
type StaticRates struct {
	Tables *domain.RateTables
}

// Rates implements RatesProvider
func (s StaticRates) Rates() *domain.RateTables {
	return s.Tables
}

// CalculationEngine dispatches quote requests to the product calculators
type CalculationEngine struct {
	Provider RatesProvider
	Logger   Logger
	Now      func() time.Time
}

// NewCalculationEngine creates an engine on the compiled-in tariff
func NewCalculationEngine() *CalculationEngine {
	return NewCalculationEngineWithRates(StaticRates{Tables: DefaultRateTables()})
}

// NewCalculationEngineWithRates creates an engine reading tables from provider
func NewCalculationEngineWithRates(provider RatesProvider) *CalculationEngine {
	return &CalculationEngine{
		Provider: provider,
		Logger:   NopLogger{},
		Now:      time.Now,
	}
}

// SetLogger sets the logger for the engine; nil installs a no-op logger
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// Rates returns the tables currently in force
func (ce *CalculationEngine) Rates() *domain.RateTables {
	return ce.Provider.Rates()
}

// Quote computes the premium breakdown for a request. Errors are only
// returned for structurally invalid requests; out-of-table numeric values
// resolve to boundary brackets and are reported as warnings.
func (ce *CalculationEngine) Quote(req *domain.QuoteRequest) (*domain.Quote, error) {
	if req == nil {
		return nil, fmt.Errorf("quote request is nil")
	}
	rates := ce.Rates()
	if rates == nil {
		return nil, fmt.Errorf("no rate tables loaded")
	}

	var q *domain.Quote
	switch req.Product {
	case domain.ProductAuto:
		if req.Auto == nil {
			return nil, fmt.Errorf("%s: %w", req.Product, ErrMissingInput)
		}
		q = AutoQuote(rates.Auto, *req.Auto)
	case domain.ProductSavings:
		if req.Savings == nil {
			return nil, fmt.Errorf("%s: %w", req.Product, ErrMissingInput)
		}
		q = SavingsQuote(rates.Savings, *req.Savings)
	case domain.ProductEducation:
		if req.Education == nil {
			return nil, fmt.Errorf("%s: %w", req.Product, ErrMissingInput)
		}
		q = EducationQuote(rates.Education, *req.Education)
	case domain.ProductMoloMolo:
		if req.MoloMolo == nil {
			return nil, fmt.Errorf("%s: %w", req.Product, ErrMissingInput)
		}
		q = MoloMoloQuote(rates.MoloMolo, *req.MoloMolo)
	case domain.ProductFuneral:
		if req.Funeral == nil {
			return nil, fmt.Errorf("%s: %w", req.Product, ErrMissingInput)
		}
		q = FuneralQuote(rates.Funeral, *req.Funeral)
	default:
		return nil, fmt.Errorf("unknown product: %q", req.Product)
	}

	q.Request = *req.DeepCopy()
	q.CreatedAt = ce.Now()

	ce.Logger.Debugf("quote %s: net=%s total=%s", q.Product, q.Breakdown.NetPremium, q.Breakdown.Total)
	for _, w := range q.Warnings {
		ce.Logger.Warnf("quote %s: %s", q.Product, w)
	}
	return q, nil
}
