// Package form describes product quote forms as a closed set of typed
// fields. Each field kind validates its own values; forms convert the
// collected values into calculator inputs.
package form

import (
	"fmt"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// Kind names a field kind on the wire
type Kind string

const (
	KindNumber      Kind = "number"
	KindChoice      Kind = "choice"
	KindToggle      Kind = "toggle"
	KindMultiChoice Kind = "multi_choice"
)

// Field is one input of a form. The set of implementations is closed:
// NumberField, ChoiceField, ToggleField and MultiChoiceField.
type Field interface {
	Key() string
	Label() string
	Kind() Kind
	field()
}

// meta holds the attributes shared by every field kind
type meta struct {
	Name     string
	Text     string
	Help     string
	Required bool
}

func (m meta) Key() string   { return m.Name }
func (m meta) Label() string { return m.Text }
func (meta) field()          {}

// Option is one selectable value of a choice field
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// NumberField accepts a decimal amount within optional bounds
type NumberField struct {
	meta
	Min     *decimal.Decimal
	Max     *decimal.Decimal
	Integer bool
	Unit    string
	Default *decimal.Decimal
}

func (*NumberField) Kind() Kind { return KindNumber }

// Validate checks v against the field bounds
func (f *NumberField) Validate(v decimal.Decimal) error {
	if f.Integer && !v.Equal(v.Floor()) {
		return domain.NewValidationError(f.Name, "doit être un nombre entier")
	}
	if f.Min != nil && v.LessThan(*f.Min) {
		return domain.NewValidationError(f.Name, "minimum %s", f.Min.String())
	}
	if f.Max != nil && v.GreaterThan(*f.Max) {
		return domain.NewValidationError(f.Name, "maximum %s", f.Max.String())
	}
	return nil
}

// ChoiceField accepts exactly one of its options
type ChoiceField struct {
	meta
	Options []Option
	Default string
}

func (*ChoiceField) Kind() Kind { return KindChoice }

// Validate checks that v is one of the options
func (f *ChoiceField) Validate(v string) error {
	for _, o := range f.Options {
		if o.Value == v {
			return nil
		}
	}
	return domain.NewValidationError(f.Name, "valeur %q non proposée", v)
}

// ToggleField is a yes/no switch
type ToggleField struct {
	meta
	Default bool
}

func (*ToggleField) Kind() Kind { return KindToggle }

// Validate accepts any boolean
func (f *ToggleField) Validate(bool) error { return nil }

// MultiChoiceField accepts any subset of its options
type MultiChoiceField struct {
	meta
	Options []Option
	Max     int // 0 means no limit
}

func (*MultiChoiceField) Kind() Kind { return KindMultiChoice }

// Validate checks every selected value and the selection size
func (f *MultiChoiceField) Validate(vs []string) error {
	if f.Max > 0 && len(vs) > f.Max {
		return domain.NewValidationError(f.Name, "au plus %d choix", f.Max)
	}
	seen := make(map[string]bool, len(vs))
	for _, v := range vs {
		if seen[v] {
			return domain.NewValidationError(f.Name, "valeur %q en double", v)
		}
		seen[v] = true
		found := false
		for _, o := range f.Options {
			if o.Value == v {
				found = true
				break
			}
		}
		if !found {
			return domain.NewValidationError(f.Name, "valeur %q non proposée", v)
		}
	}
	return nil
}

// FieldSpec is the wire description of a field rendered by clients
type FieldSpec struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Kind     Kind             `json:"kind"`
	Help     string           `json:"help,omitempty"`
	Required bool             `json:"required"`
	Min      *decimal.Decimal `json:"min,omitempty"`
	Max      *decimal.Decimal `json:"max,omitempty"`
	Integer  bool             `json:"integer,omitempty"`
	Unit     string           `json:"unit,omitempty"`
	Options  []Option         `json:"options,omitempty"`
	MaxItems int              `json:"maxItems,omitempty"`
	Default  interface{}      `json:"default,omitempty"`
}

// Describe renders a field into its wire description
func Describe(f Field) (FieldSpec, error) {
	switch f := f.(type) {
	case *NumberField:
		spec := f.meta.spec(KindNumber)
		spec.Min, spec.Max, spec.Integer, spec.Unit = f.Min, f.Max, f.Integer, f.Unit
		if f.Default != nil {
			spec.Default = f.Default
		}
		return spec, nil
	case *ChoiceField:
		spec := f.meta.spec(KindChoice)
		spec.Options = f.Options
		if f.Default != "" {
			spec.Default = f.Default
		}
		return spec, nil
	case *ToggleField:
		spec := f.meta.spec(KindToggle)
		spec.Default = f.Default
		return spec, nil
	case *MultiChoiceField:
		spec := f.meta.spec(KindMultiChoice)
		spec.Options = f.Options
		spec.MaxItems = f.Max
		return spec, nil
	default:
		return FieldSpec{}, fmt.Errorf("form: unhandled field kind %T", f)
	}
}

func (m meta) spec(kind Kind) FieldSpec {
	return FieldSpec{Key: m.Name, Label: m.Text, Kind: kind, Help: m.Help, Required: m.Required}
}
