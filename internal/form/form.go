package form

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// Form is the ordered set of fields collected for one product
type Form struct {
	Product domain.Product
	Title   string
	Fields  []Field
}

// Spec is the wire description of a form
type Spec struct {
	Product domain.Product `json:"product"`
	Title   string         `json:"title"`
	Fields  []FieldSpec    `json:"fields"`
}

// Describe renders every field of the form
func (f *Form) Describe() (Spec, error) {
	spec := Spec{Product: f.Product, Title: f.Title, Fields: make([]FieldSpec, 0, len(f.Fields))}
	for _, field := range f.Fields {
		fs, err := Describe(field)
		if err != nil {
			return Spec{}, err
		}
		spec.Fields = append(spec.Fields, fs)
	}
	return spec, nil
}

// Field returns the field with key
func (f *Form) Field(key string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Key() == key {
			return field, true
		}
	}
	return nil, false
}

// Values holds parsed, validated form values keyed by field
type Values map[string]interface{}

// Decimal returns a number value, zero when absent
func (v Values) Decimal(key string) decimal.Decimal {
	if d, ok := v[key].(decimal.Decimal); ok {
		return d
	}
	return decimal.Zero
}

// Int returns a number value truncated to an int
func (v Values) Int(key string) int {
	return int(v.Decimal(key).IntPart())
}

// Has reports whether key holds a value
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// String returns a choice value
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Bool returns a toggle value
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// Strings returns a multi-choice value
func (v Values) Strings(key string) []string {
	s, _ := v[key].([]string)
	return s
}

// Parse converts raw input (decoded JSON, or strings typed in a terminal)
// into typed values. Each field validates its own value; absent optional
// fields take their default.
func (f *Form) Parse(raw map[string]interface{}) (Values, error) {
	out := make(Values, len(f.Fields))
	for _, field := range f.Fields {
		rv, present := raw[field.Key()]
		if present && isBlank(rv) {
			present = false
		}

		switch fd := field.(type) {
		case *NumberField:
			if !present {
				if fd.Required {
					return nil, domain.NewValidationError(fd.Name, "champ obligatoire")
				}
				if fd.Default != nil {
					out[fd.Name] = *fd.Default
				}
				continue
			}
			n, err := toDecimal(rv)
			if err != nil {
				return nil, domain.NewValidationError(fd.Name, "nombre attendu")
			}
			if err := fd.Validate(n); err != nil {
				return nil, err
			}
			out[fd.Name] = n

		case *ChoiceField:
			if !present {
				if fd.Required && fd.Default == "" {
					return nil, domain.NewValidationError(fd.Name, "champ obligatoire")
				}
				if fd.Default != "" {
					out[fd.Name] = fd.Default
				}
				continue
			}
			s := strings.TrimSpace(fmt.Sprint(rv))
			if err := fd.Validate(s); err != nil {
				return nil, err
			}
			out[fd.Name] = s

		case *ToggleField:
			if !present {
				out[fd.Name] = fd.Default
				continue
			}
			b, err := toBool(rv)
			if err != nil {
				return nil, domain.NewValidationError(fd.Name, "oui/non attendu")
			}
			if err := fd.Validate(b); err != nil {
				return nil, err
			}
			out[fd.Name] = b

		case *MultiChoiceField:
			if !present {
				if fd.Required {
					return nil, domain.NewValidationError(fd.Name, "champ obligatoire")
				}
				out[fd.Name] = []string{}
				continue
			}
			vs, err := toStrings(rv)
			if err != nil {
				return nil, domain.NewValidationError(fd.Name, "liste attendue")
			}
			if err := fd.Validate(vs); err != nil {
				return nil, err
			}
			out[fd.Name] = vs

		default:
			return nil, fmt.Errorf("form: unhandled field kind %T", field)
		}
	}
	return out, nil
}

// Request parses raw input and builds the matching quote request
func (f *Form) Request(raw map[string]interface{}) (*domain.QuoteRequest, error) {
	values, err := f.Parse(raw)
	if err != nil {
		return nil, err
	}
	return BuildRequest(f.Product, values)
}

func isBlank(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(strings.TrimSpace(x))
		return decimal.NewFromString(s)
	}
	return decimal.Zero, fmt.Errorf("unsupported number %T", v)
}

func toBool(v interface{}) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "oui", "o", "yes", "y":
			return true, nil
		case "non", "n", "no":
			return false, nil
		}
		return strconv.ParseBool(strings.TrimSpace(x))
	}
	return false, fmt.Errorf("unsupported boolean %T", v)
}

func toStrings(v interface{}) ([]string, error) {
	switch x := v.(type) {
	case []string:
		return x, nil
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported list item %T", item)
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	case string:
		var out []string
		for _, part := range strings.Split(x, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported list %T", v)
}
