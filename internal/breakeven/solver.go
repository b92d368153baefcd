package breakeven

import (
	"context"
	"fmt"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/output"
	"github.com/assurlink/courtage/internal/transform"
	"github.com/shopspring/decimal"
)

// Solver finds the smallest contribution or duration reaching a target capital.
// Final capital is monotonic in both, so each search is a bisection over integers.
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
}

// NewSolver creates a new solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// Solve routes the request to the solver for its target
func (s *Solver) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	switch req.Target {
	case SolveForContribution, "":
		return s.SolveContribution(ctx, req)
	case SolveForDuration:
		return s.SolveDuration(ctx, req)
	default:
		return nil, &SolveError{
			Operation: "solve",
			Message:   fmt.Sprintf("unsupported solve target: %s", req.Target),
		}
	}
}

// SolveContribution finds the smallest whole-franc contribution whose final
// capital reaches req.TargetCapital, keeping every other parameter of the base.
func (s *Solver) SolveContribution(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	req.Target = SolveForContribution
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rates, err := s.capitalisationRates(req.Base.Product)
	if err != nil {
		return nil, err
	}

	lo := decimal.Max(req.MinContribution, rates.MinContribution, decimal.NewFromInt(1)).Ceil().IntPart()
	maxContribution := req.MaxContribution
	if !maxContribution.IsPositive() {
		maxContribution = s.Options.MaxContribution
	}
	hi := maxContribution.Floor().IntPart()
	if lo > hi {
		return nil, &SolveError{
			Operation: "solve_contribution",
			Message:   fmt.Sprintf("contribution range is empty (%d > %d)", lo, hi),
		}
	}

	eval := func(n int64) (*domain.Quote, error) {
		next, err := (&transform.SetContribution{Amount: decimal.NewFromInt(n)}).Apply(req.Base)
		if err != nil {
			return nil, err
		}
		return s.CalcEngine.Quote(next)
	}

	n, q, iterations, err := s.search(ctx, "solve_contribution", lo, hi, s.maxIterations(req), req.TargetCapital, eval)
	if err != nil {
		return nil, err
	}

	result, err := s.result(req, q, iterations)
	if err != nil {
		return nil, err
	}
	result.Contribution = decimal.NewFromInt(n)
	result.ContributionDiffFromBase = result.Contribution.Sub(contributionOf(req.Base))
	result.ConvergenceInfo = fmt.Sprintf("Contribution minimale trouvée en %d évaluations", iterations)
	return result, nil
}

// SolveDuration finds the shortest whole-year duration whose final capital
// reaches req.TargetCapital at the base contribution.
func (s *Solver) SolveDuration(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	req.Target = SolveForDuration
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rates, err := s.capitalisationRates(req.Base.Product)
	if err != nil {
		return nil, err
	}

	maxYears := req.MaxYears
	if maxYears == 0 || maxYears > rates.MaxYears {
		maxYears = rates.MaxYears
	}
	if maxYears < 1 {
		return nil, &SolveError{Operation: "solve_duration", Message: "tariff allows no duration"}
	}

	eval := func(n int64) (*domain.Quote, error) {
		next, err := (&transform.SetDuration{Years: int(n)}).Apply(req.Base)
		if err != nil {
			return nil, err
		}
		return s.CalcEngine.Quote(next)
	}

	n, q, iterations, err := s.search(ctx, "solve_duration", 1, int64(maxYears), s.maxIterations(req), req.TargetCapital, eval)
	if err != nil {
		return nil, err
	}

	result, err := s.result(req, q, iterations)
	if err != nil {
		return nil, err
	}
	result.DurationYears = int(n)
	result.DurationDiffFromBase = result.DurationYears - yearsOf(req.Base)
	result.ConvergenceInfo = fmt.Sprintf("Durée minimale trouvée en %d évaluations", iterations)
	return result, nil
}

// search bisects [lo, hi] for the smallest n whose quote reaches target.
// The upper bound is evaluated first so an unreachable target fails fast.
func (s *Solver) search(
	ctx context.Context,
	op string,
	lo, hi int64,
	maxIterations int,
	target decimal.Decimal,
	eval func(int64) (*domain.Quote, error),
) (int64, *domain.Quote, int, error) {
	iterations := 1
	best, err := eval(hi)
	if err != nil {
		return 0, nil, iterations, &SolveError{Operation: op, Message: "failed to calculate quote", Cause: err}
	}
	if best.FinalCapital().LessThan(target) {
		return 0, nil, iterations, &SolveError{
			Operation: op,
			Message: fmt.Sprintf("target %s not reachable: %d gives %s",
				output.FormatFCFA(target), hi, output.FormatFCFA(best.FinalCapital())),
		}
	}

	// invariant: hi reaches the target, everything below lo does not
	for lo < hi {
		select {
		case <-ctx.Done():
			return 0, nil, iterations, ctx.Err()
		default:
		}
		if iterations >= maxIterations {
			return 0, nil, iterations, &SolveError{
				Operation: op,
				Message:   fmt.Sprintf("did not converge after %d iterations", maxIterations),
			}
		}

		mid := lo + (hi-lo)/2
		q, err := eval(mid)
		iterations++
		if err != nil {
			return 0, nil, iterations, &SolveError{Operation: op, Message: "failed to calculate quote", Cause: err}
		}
		if q.FinalCapital().GreaterThanOrEqual(target) {
			hi = mid
			best = q
		} else {
			lo = mid + 1
		}
	}

	s.CalcEngine.Logger.Debugf("%s: %d after %d iterations", op, hi, iterations)
	return hi, best, iterations, nil
}

func (s *Solver) result(req SolveRequest, q *domain.Quote, iterations int) (*SolveResult, error) {
	base, err := s.CalcEngine.Quote(req.Base)
	if err != nil {
		return nil, &SolveError{Operation: "solve", Message: "failed to calculate base quote", Cause: err}
	}
	return &SolveResult{
		Request:       req,
		Success:       true,
		Iterations:    iterations,
		Contribution:  contributionOf(&q.Request),
		DurationYears: yearsOf(&q.Request),
		Quote:         q,
		FinalCapital:  q.FinalCapital(),
		Surplus:       q.FinalCapital().Sub(req.TargetCapital),
		BaseQuote:     base,
	}, nil
}

func (s *Solver) maxIterations(req SolveRequest) int {
	if req.MaxIterations > 0 {
		return req.MaxIterations
	}
	if s.Options.MaxIterations > 0 {
		return s.Options.MaxIterations
	}
	return DefaultSolverOptions().MaxIterations
}

func (s *Solver) capitalisationRates(p domain.Product) (domain.CapitalisationRates, error) {
	rates := s.CalcEngine.Rates()
	if rates == nil {
		return domain.CapitalisationRates{}, &SolveError{Operation: "solve", Message: "no rate tables loaded"}
	}
	switch p {
	case domain.ProductSavings:
		return rates.Savings.CapitalisationRates, nil
	case domain.ProductEducation:
		return rates.Education.CapitalisationRates, nil
	case domain.ProductMoloMolo:
		return rates.MoloMolo.CapitalisationRates, nil
	}
	return domain.CapitalisationRates{}, &SolveError{Operation: "solve", Message: "not a capitalisation product: " + string(p)}
}

func contributionOf(req *domain.QuoteRequest) decimal.Decimal {
	switch {
	case req.Product == domain.ProductSavings && req.Savings != nil:
		return req.Savings.MonthlyContribution
	case req.Product == domain.ProductEducation && req.Education != nil:
		return req.Education.MonthlyContribution
	case req.Product == domain.ProductMoloMolo && req.MoloMolo != nil:
		return req.MoloMolo.Contribution
	}
	return decimal.Zero
}

func yearsOf(req *domain.QuoteRequest) int {
	switch {
	case req.Product == domain.ProductSavings && req.Savings != nil:
		return req.Savings.DurationYears
	case req.Product == domain.ProductEducation && req.Education != nil:
		return req.Education.DeferredYears
	case req.Product == domain.ProductMoloMolo && req.MoloMolo != nil:
		return req.MoloMolo.DurationYears
	}
	return 0
}
