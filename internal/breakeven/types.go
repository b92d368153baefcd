package breakeven

import (
	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// SolveTarget defines which request parameter the solver varies
type SolveTarget string

const (
	SolveForContribution SolveTarget = "contribution"
	SolveForDuration     SolveTarget = "duration"
)

// SolveRequest defines the parameters for a solver run
type SolveRequest struct {
	Base          *domain.QuoteRequest `json:"-"`
	Target        SolveTarget          `json:"target"`
	TargetCapital decimal.Decimal      `json:"targetCapital"`
	// Search bounds; zero values fall back to the tariff and solver options
	MinContribution decimal.Decimal `json:"minContribution,omitempty"`
	MaxContribution decimal.Decimal `json:"maxContribution,omitempty"`
	MaxYears        int             `json:"maxYears,omitempty"`
	MaxIterations   int             `json:"maxIterations,omitempty"`
}

// SolveResult contains the outcome of a solver run
type SolveResult struct {
	Request         SolveRequest `json:"request"`
	Success         bool         `json:"success"`
	Iterations      int          `json:"iterations"`
	ConvergenceInfo string       `json:"convergenceInfo"`

	// Solved parameters
	Contribution  decimal.Decimal `json:"contribution"`
	DurationYears int             `json:"durationYears"`

	// Results at the solved parameters
	Quote        *domain.Quote   `json:"quote"`
	FinalCapital decimal.Decimal `json:"finalCapital"`
	Surplus      decimal.Decimal `json:"surplus"`

	// Comparison to base
	BaseQuote                *domain.Quote   `json:"baseQuote,omitempty"`
	ContributionDiffFromBase decimal.Decimal `json:"contributionDiffFromBase"`
	DurationDiffFromBase     int             `json:"durationDiffFromBase"`
}

// MultiResult contains the results of solving every target for one goal
type MultiResult struct {
	Results         []SolveResult `json:"results"`
	LowestEffort    *SolveResult  `json:"lowestEffort,omitempty"`
	Recommendations []string      `json:"recommendations"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	MaxIterations   int             // Maximum evaluations per search
	MaxContribution decimal.Decimal // Upper contribution bound when the request sets none
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxIterations:   64,
		MaxContribution: decimal.NewFromInt(100_000_000),
	}
}

// Validate checks the request is internally consistent
func (r *SolveRequest) Validate() error {
	if r.Base == nil {
		return &SolveError{Operation: "validate_request", Message: "base request is required"}
	}
	if !r.Base.Product.IsCapitalisation() {
		return &SolveError{
			Operation: "validate_request",
			Message:   "only capitalisation products can be solved for a capital, got " + string(r.Base.Product),
		}
	}
	if !r.TargetCapital.IsPositive() {
		return &SolveError{Operation: "validate_request", Message: "target capital must be positive"}
	}
	if r.MaxContribution.IsPositive() && r.MinContribution.GreaterThan(r.MaxContribution) {
		return &SolveError{Operation: "validate_request", Message: "min contribution cannot exceed max contribution"}
	}
	if r.MaxYears < 0 || r.MaxIterations < 0 {
		return &SolveError{Operation: "validate_request", Message: "limits cannot be negative"}
	}
	return nil
}

// SolveError represents errors from the solver
type SolveError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *SolveError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *SolveError) Unwrap() error {
	return e.Cause
}

// totalContributions is what the client pays in over the solved contract
func (r *SolveResult) totalContributions() decimal.Decimal {
	if r.Quote == nil || r.Quote.Projection == nil {
		return decimal.Zero
	}
	return r.Quote.Projection.TotalContributions
}
