package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Profile describes a prospect for a needs diagnostic
type Profile struct {
	Age           int             `json:"age"`
	MaritalStatus string          `json:"marital_status,omitempty"`
	Children      int             `json:"children"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	HasVehicle    bool            `json:"has_vehicle"`
	Goals         []string        `json:"goals,omitempty"`
}

// Validate checks the profile is usable
func (p Profile) Validate() error {
	if p.Age < 18 || p.Age > 100 {
		return domain.NewValidationError("age", "âge entre 18 et 100 ans attendu")
	}
	if p.Children < 0 {
		return domain.NewValidationError("children", "nombre d'enfants négatif")
	}
	if p.MonthlyIncome.IsNegative() {
		return domain.NewValidationError("monthly_income", "revenu négatif")
	}
	return nil
}

// Recommendation is one suggested product
type Recommendation struct {
	Product  domain.Product `json:"product"`
	Reason   string         `json:"reason"`
	Priority int            `json:"priority"`
}

// Diagnosis is the recommended product mix for a profile
type Diagnosis struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

const diagnoseSystem = `Tu es un conseiller en assurance d'un courtier au Sénégal.
À partir du profil d'un prospect, recommande les produits adaptés parmi : auto, epargne, education, molo_molo, obseques.
Réponds uniquement avec un objet JSON de la forme
{"summary": "...", "recommendations": [{"product": "epargne", "reason": "...", "priority": 1}]}
où priority 1 est la plus importante.`

// Diagnose recommends products for a prospect. Recommendations naming
// unknown products are dropped.
func (a *Assistant) Diagnose(ctx context.Context, p Profile) (*Diagnosis, error) {
	const op = "diagnose"
	if err := p.Validate(); err != nil {
		return nil, err
	}

	text, err := a.complete(ctx, op, Prompt{
		System: diagnoseSystem,
		Parts:  []Part{{Text: describeProfile(p)}},
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	var raw Diagnosis
	if err := decodeJSON(text, &raw); err != nil {
		return nil, &GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	out := &Diagnosis{Summary: strings.TrimSpace(raw.Summary)}
	seen := map[domain.Product]bool{}
	for _, r := range raw.Recommendations {
		prod, err := domain.ParseProduct(string(r.Product))
		if err != nil {
			a.logger.Debug("dropping recommendation", zap.String("product", string(r.Product)))
			continue
		}
		if seen[prod] {
			continue
		}
		seen[prod] = true
		r.Product = prod
		r.Reason = strings.TrimSpace(r.Reason)
		out.Recommendations = append(out.Recommendations, r)
	}
	sort.SliceStable(out.Recommendations, func(i, j int) bool {
		return out.Recommendations[i].Priority < out.Recommendations[j].Priority
	})

	if len(out.Recommendations) == 0 {
		return nil, &MissingFieldsError{Op: op, Fields: []string{"recommendations"}}
	}
	return out, nil
}

func describeProfile(p Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Âge : %d ans\n", p.Age)
	if p.MaritalStatus != "" {
		fmt.Fprintf(&b, "Situation familiale : %s\n", p.MaritalStatus)
	}
	fmt.Fprintf(&b, "Enfants : %d\n", p.Children)
	fmt.Fprintf(&b, "Revenu mensuel : %s FCFA\n", p.MonthlyIncome.StringFixed(0))
	if p.HasVehicle {
		fmt.Fprintln(&b, "Possède un véhicule : oui")
	} else {
		fmt.Fprintln(&b, "Possède un véhicule : non")
	}
	if len(p.Goals) > 0 {
		fmt.Fprintf(&b, "Objectifs : %s\n", strings.Join(p.Goals, ", "))
	}
	return b.String()
}
