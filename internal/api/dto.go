package api

import (
	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOGUE
// =============================================================================

// ProductDTO describes one product of the catalogue
type ProductDTO struct {
	Code           domain.Product `json:"code"`
	Label          string         `json:"label"`
	Capitalisation bool           `json:"capitalisation"`
	FormURL        string         `json:"formUrl"`
}

// ProductsResponse lists the catalogue with the tariff in force
type ProductsResponse struct {
	Products     []ProductDTO `json:"products"`
	RatesVersion string       `json:"ratesVersion"`
	Currency     string       `json:"currency"`
}

// =============================================================================
// QUOTES
// =============================================================================

// QuoteResponse wraps a computed quote
type QuoteResponse struct {
	Quote *domain.Quote `json:"quote"`
	Saved bool          `json:"saved"`
	Owner string        `json:"owner,omitempty"`
}

// SolveBody asks the solver for the contribution or duration reaching a capital.
// Target is contribution, duration or all.
type SolveBody struct {
	Values          map[string]interface{} `json:"values"`
	Target          string                 `json:"target"`
	TargetCapital   decimal.Decimal        `json:"targetCapital"`
	MinContribution decimal.Decimal        `json:"minContribution"`
	MaxContribution decimal.Decimal        `json:"maxContribution"`
	MaxYears        int                    `json:"maxYears"`
}

// VariantDTO is one named variant given as transform specs
type VariantDTO struct {
	Name       string `json:"name"`
	Transforms string `json:"transforms"`
}

// CompareBody compares a base quote against variants and built-in templates
type CompareBody struct {
	Values    map[string]interface{} `json:"values"`
	Variants  []VariantDTO           `json:"variants"`
	Templates []string               `json:"templates"`
}

// =============================================================================
// ASSISTANT
// =============================================================================

// PitchBody names the quote to pitch: a saved quote id, or form values to quote
type PitchBody struct {
	QuoteID string                 `json:"quoteId"`
	Product domain.Product         `json:"product"`
	Values  map[string]interface{} `json:"values"`
}

// PitchResponse carries the markdown argument
type PitchResponse struct {
	Markdown string `json:"markdown"`
	QuoteID  string `json:"quoteId,omitempty"`
}

// =============================================================================
// LEADS
// =============================================================================

// CreateLeadRequest registers a prospect in the broker's pipeline
type CreateLeadRequest struct {
	ClientName  string         `json:"clientName"`
	Phone       string         `json:"phone"`
	Email       string         `json:"email"`
	Product     domain.Product `json:"product"`
	QuoteID     string         `json:"quoteId"`
	RenewalDate string         `json:"renewalDate"` // YYYY-MM-DD
	BrokerID    string         `json:"brokerId"`    // admins only; brokers own their leads
}

// LeadStatusRequest moves a lead through the pipeline
type LeadStatusRequest struct {
	Status      domain.LeadStatus  `json:"status"`
	ChurnReason domain.ChurnReason `json:"churnReason"`
}

// =============================================================================
// ADMIN
// =============================================================================

// RatesResponse describes the tariff in force
type RatesResponse struct {
	Metadata domain.RateMetadata `json:"metadata"`
	Source   string              `json:"source"`
	Tables   *domain.RateTables  `json:"tables,omitempty"`
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Rates    string `json:"rates"`
}
