package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, used by the CLI
// --with flag and the compare endpoint.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (QuoteTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("set_duration", createSetDuration)
	registry.Register("set_contribution", createSetContribution)
	registry.Register("add_coverage", createAddCoverage)
	registry.Register("remove_coverage", createRemoveCoverage)
	registry.Register("set_bonus_malus", createSetBonusMalus)
	registry.Register("set_tier", createSetTier)
	registry.Register("set_frequency", createSetFrequency)
	registry.Register("set_rent_years", createSetRentYears)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (QuoteTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms, sorted.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "set_duration:years=5"
func (r *TransformRegistry) ParseTransformSpec(spec string) (QuoteTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// ParseVariant parses a ';'-separated list of transform specs making up one variant
func (r *TransformRegistry) ParseVariant(spec string) ([]QuoteTransform, error) {
	var out []QuoteTransform
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := r.ParseTransformSpec(part)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty variant spec")
	}
	return out, nil
}

func intParam(transform string, params map[string]string, key string) (int, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func stringParam(transform string, params map[string]string, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	return v, nil
}

// Factory functions for each transform

func createSetDuration(params map[string]string) (QuoteTransform, error) {
	_, hasYears := params["years"]
	_, hasMonths := params["months"]
	switch {
	case hasYears && hasMonths:
		return nil, fmt.Errorf("set_duration takes either 'years' or 'months', not both")
	case hasMonths:
		months, err := intParam("set_duration", params, "months")
		if err != nil {
			return nil, err
		}
		return &SetDuration{Months: months}, nil
	}
	years, err := intParam("set_duration", params, "years")
	if err != nil {
		return nil, err
	}
	return &SetDuration{Years: years}, nil
}

func createSetContribution(params map[string]string) (QuoteTransform, error) {
	amountStr, err := stringParam("set_contribution", params, "amount")
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount value: %w", err)
	}
	return &SetContribution{Amount: amount}, nil
}

func createAddCoverage(params map[string]string) (QuoteTransform, error) {
	code, err := stringParam("add_coverage", params, "code")
	if err != nil {
		return nil, err
	}
	return &AddCoverage{Code: code}, nil
}

func createRemoveCoverage(params map[string]string) (QuoteTransform, error) {
	code, err := stringParam("remove_coverage", params, "code")
	if err != nil {
		return nil, err
	}
	return &RemoveCoverage{Code: code}, nil
}

func createSetBonusMalus(params map[string]string) (QuoteTransform, error) {
	class, err := stringParam("set_bonus_malus", params, "class")
	if err != nil {
		return nil, err
	}
	return &SetBonusMalus{Class: class}, nil
}

func createSetTier(params map[string]string) (QuoteTransform, error) {
	tier, err := stringParam("set_tier", params, "tier")
	if err != nil {
		return nil, err
	}
	return &SetTier{Tier: tier}, nil
}

func createSetFrequency(params map[string]string) (QuoteTransform, error) {
	freq, err := stringParam("set_frequency", params, "frequency")
	if err != nil {
		return nil, err
	}
	f := domain.Frequency(freq)
	if f.PaymentsPerYear() == 0 {
		return nil, fmt.Errorf("invalid frequency value: %q", freq)
	}
	return &SetFrequency{Frequency: f}, nil
}

func createSetRentYears(params map[string]string) (QuoteTransform, error) {
	years, err := intParam("set_rent_years", params, "years")
	if err != nil {
		return nil, err
	}
	return &SetRentYears{Years: years}, nil
}
