package breakeven

import (
	"context"
	"fmt"

	"github.com/assurlink/courtage/internal/output"
	"github.com/shopspring/decimal"
)

// SolveAll solves every target for the same capital goal and compares the
// effort each one asks of the client. Targets that cannot reach the goal are skipped.
func (s *Solver) SolveAll(ctx context.Context, req SolveRequest) (*MultiResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var results []SolveResult
	var lastErr error
	for _, target := range []SolveTarget{SolveForContribution, SolveForDuration} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := req
		r.Target = target
		result, err := s.Solve(ctx, r)
		if err != nil {
			s.CalcEngine.Logger.Debugf("solve %s skipped: %v", target, err)
			lastErr = err
			continue
		}
		results = append(results, *result)
	}

	if len(results) == 0 {
		return nil, &SolveError{
			Operation: "solve_all",
			Message:   "no target reaches the requested capital",
			Cause:     lastErr,
		}
	}

	mr := &MultiResult{Results: results}
	for i := range results {
		if mr.LowestEffort == nil || results[i].totalContributions().LessThan(mr.LowestEffort.totalContributions()) {
			mr.LowestEffort = &results[i]
		}
	}
	mr.Recommendations = generateRecommendations(mr)
	return mr, nil
}

func generateRecommendations(mr *MultiResult) []string {
	var recommendations []string
	for _, r := range mr.Results {
		switch r.Request.Target {
		case SolveForContribution:
			recommendations = append(recommendations, fmt.Sprintf(
				"Cotiser %s sur %d ans (%s par rapport au devis)",
				output.FormatFCFA(r.Contribution), r.DurationYears, signed(r.ContributionDiffFromBase.IntPart())))
		case SolveForDuration:
			recommendations = append(recommendations, fmt.Sprintf(
				"Garder %s et prolonger à %d ans (%+d ans)",
				output.FormatFCFA(r.Contribution), r.DurationYears, r.DurationDiffFromBase))
		}
	}
	if mr.LowestEffort != nil && len(mr.Results) > 1 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Effort total le plus faible : %s (%s cotisés)",
			targetLabel(mr.LowestEffort.Request.Target), output.FormatFCFA(mr.LowestEffort.totalContributions())))
	}
	return recommendations
}

func signed(n int64) string {
	if n > 0 {
		return "+" + output.FormatFCFA(decimal.NewFromInt(n))
	}
	return output.FormatFCFA(decimal.NewFromInt(n))
}

func targetLabel(t SolveTarget) string {
	switch t {
	case SolveForContribution:
		return "ajuster la cotisation"
	case SolveForDuration:
		return "ajuster la durée"
	}
	return string(t)
}
