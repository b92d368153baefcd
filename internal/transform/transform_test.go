package transform

import (
	"errors"
	"testing"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

func autoRequest() *domain.QuoteRequest {
	return &domain.QuoteRequest{
		Name:    "Berline",
		Product: domain.ProductAuto,
		Auto: &domain.AutoInput{
			FiscalPower:    7,
			Usage:          "prive",
			Seats:          5,
			BonusMalus:     "neutre",
			DurationMonths: 12,
			Coverages:      []string{"defense_recours"},
		},
	}
}

func savingsRequest() *domain.QuoteRequest {
	return &domain.QuoteRequest{
		Product: domain.ProductSavings,
		Savings: &domain.SavingsInput{MonthlyContribution: decimal.NewFromInt(10000), DurationYears: 3},
	}
}

func TestApplyTransforms_NilRequest(t *testing.T) {
	_, err := ApplyTransforms(nil, []QuoteTransform{&SetDuration{Years: 5}})
	if err == nil {
		t.Error("Expected error for nil request, got nil")
	}
}

func TestApplyTransforms_EmptyTransforms(t *testing.T) {
	base := savingsRequest()

	result, err := ApplyTransforms(base, nil)
	if err != nil {
		t.Fatalf("Expected no error for empty transforms, got: %v", err)
	}
	if result == base {
		t.Error("Expected a copy, got the base pointer")
	}
	if result.Savings == base.Savings {
		t.Error("Expected the savings section to be copied")
	}
}

func TestApplyTransforms_Sequence(t *testing.T) {
	base := savingsRequest()

	result, err := ApplyTransforms(base, []QuoteTransform{
		&SetDuration{Years: 10},
		&SetContribution{Amount: decimal.NewFromInt(25000)},
	})
	if err != nil {
		t.Fatalf("ApplyTransforms failed: %v", err)
	}
	if result.Savings.DurationYears != 10 {
		t.Errorf("Expected duration 10, got %d", result.Savings.DurationYears)
	}
	if !result.Savings.MonthlyContribution.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("Expected contribution 25000, got %s", result.Savings.MonthlyContribution)
	}
	if base.Savings.DurationYears != 3 || !base.Savings.MonthlyContribution.Equal(decimal.NewFromInt(10000)) {
		t.Error("Base request was modified")
	}
}

func TestApplyTransforms_NilTransform(t *testing.T) {
	_, err := ApplyTransforms(savingsRequest(), []QuoteTransform{nil})
	if err == nil {
		t.Error("Expected error for nil transform")
	}
}

func TestApplyTransforms_ValidationFailureIsTyped(t *testing.T) {
	_, err := ApplyTransforms(savingsRequest(), []QuoteTransform{&AddCoverage{Code: "vol"}})
	var terr *TransformError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected TransformError, got %v", err)
	}
	if terr.TransformName != "add_coverage" {
		t.Errorf("Expected add_coverage, got %s", terr.TransformName)
	}
}

func TestSetDuration(t *testing.T) {
	tests := []struct {
		name    string
		base    *domain.QuoteRequest
		t       *SetDuration
		check   func(*domain.QuoteRequest) bool
		wantErr bool
	}{
		{"savings years", savingsRequest(), &SetDuration{Years: 8},
			func(r *domain.QuoteRequest) bool { return r.Savings.DurationYears == 8 }, false},
		{"auto months", autoRequest(), &SetDuration{Months: 3},
			func(r *domain.QuoteRequest) bool { return r.Auto.DurationMonths == 3 }, false},
		{"education deferral", &domain.QuoteRequest{Product: domain.ProductEducation, Education: &domain.EducationInput{DeferredYears: 10}},
			&SetDuration{Years: 12}, func(r *domain.QuoteRequest) bool { return r.Education.DeferredYears == 12 }, false},
		{"molo", &domain.QuoteRequest{Product: domain.ProductMoloMolo, MoloMolo: &domain.MoloMoloInput{DurationYears: 5}},
			&SetDuration{Years: 7}, func(r *domain.QuoteRequest) bool { return r.MoloMolo.DurationYears == 7 }, false},
		{"auto over a year", autoRequest(), &SetDuration{Months: 13}, nil, true},
		{"zero years", savingsRequest(), &SetDuration{}, nil, true},
		{"funeral", &domain.QuoteRequest{Product: domain.ProductFuneral, Funeral: &domain.FuneralInput{}}, &SetDuration{Years: 2}, nil, true},
		{"missing section", &domain.QuoteRequest{Product: domain.ProductSavings}, &SetDuration{Years: 2}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.t.Apply(tt.base)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if !tt.check(out) {
				t.Errorf("Unexpected result: %+v", out)
			}
		})
	}
}

func TestCoverageTransforms(t *testing.T) {
	base := autoRequest()

	added, err := (&AddCoverage{Code: "vol"}).Apply(base)
	if err != nil {
		t.Fatalf("AddCoverage failed: %v", err)
	}
	if len(added.Auto.Coverages) != 2 || added.Auto.Coverages[1] != "vol" {
		t.Errorf("Expected vol appended, got %v", added.Auto.Coverages)
	}
	if len(base.Auto.Coverages) != 1 {
		t.Error("Base coverages were modified")
	}

	if _, err := (&AddCoverage{Code: "vol"}).Apply(added); err == nil {
		t.Error("Expected error adding a coverage twice")
	}

	removed, err := (&RemoveCoverage{Code: "defense_recours"}).Apply(added)
	if err != nil {
		t.Fatalf("RemoveCoverage failed: %v", err)
	}
	if len(removed.Auto.Coverages) != 1 || removed.Auto.Coverages[0] != "vol" {
		t.Errorf("Expected only vol left, got %v", removed.Auto.Coverages)
	}
	if len(added.Auto.Coverages) != 2 {
		t.Error("Input coverages were modified by remove")
	}

	if _, err := (&RemoveCoverage{Code: "bris_de_glace"}).Apply(base); err == nil {
		t.Error("Expected error removing an unsubscribed coverage")
	}
}

func TestSetFrequency(t *testing.T) {
	funeral := &domain.QuoteRequest{Product: domain.ProductFuneral, Funeral: &domain.FuneralInput{Tier: "confort", Frequency: domain.FrequencyMonthly}}

	out, err := (&SetFrequency{Frequency: domain.FrequencyAnnual}).Apply(funeral)
	if err != nil {
		t.Fatalf("SetFrequency failed: %v", err)
	}
	if out.Funeral.Frequency != domain.FrequencyAnnual {
		t.Errorf("Expected annuelle, got %s", out.Funeral.Frequency)
	}

	if err := (&SetFrequency{Frequency: "hebdomadaire"}).Validate(funeral); err == nil {
		t.Error("Expected error for unknown frequency")
	}
	if err := (&SetFrequency{Frequency: domain.FrequencyAnnual}).Validate(savingsRequest()); err == nil {
		t.Error("Expected error for savings")
	}
}

func TestDescribe(t *testing.T) {
	got := Describe([]QuoteTransform{&SetDuration{Years: 5}, &SetContribution{Amount: decimal.NewFromInt(25000)}})
	want := "Durée 5 ans + Cotisation 25 000 FCFA"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
