package domain

import "fmt"

// Product identifies an insurance product family that can be quoted
type Product string

const (
	ProductAuto      Product = "auto"
	ProductSavings   Product = "epargne"
	ProductEducation Product = "education"
	ProductMoloMolo  Product = "molo_molo"
	ProductFuneral   Product = "obseques"
)

// AllProducts lists every quotable product in display order
func AllProducts() []Product {
	return []Product{ProductAuto, ProductSavings, ProductEducation, ProductMoloMolo, ProductFuneral}
}

// ParseProduct converts a string into a known product
func ParseProduct(s string) (Product, error) {
	p := Product(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown product: %q", s)
	}
	return p, nil
}

// Valid reports whether the product is one of the supported families
func (p Product) Valid() bool {
	switch p {
	case ProductAuto, ProductSavings, ProductEducation, ProductMoloMolo, ProductFuneral:
		return true
	}
	return false
}

// Label returns the customer-facing product name
func (p Product) Label() string {
	switch p {
	case ProductAuto:
		return "Assurance Automobile"
	case ProductSavings:
		return "Épargne Plus"
	case ProductEducation:
		return "Plan Études"
	case ProductMoloMolo:
		return "Molo Molo"
	case ProductFuneral:
		return "Pack Obsèques"
	}
	return string(p)
}

// IsCapitalisation reports whether the product accumulates capital year over year
func (p Product) IsCapitalisation() bool {
	return p == ProductSavings || p == ProductEducation || p == ProductMoloMolo
}

// RoundingMode controls when amounts are rounded to the currency unit
type RoundingMode string

const (
	// RoundEachStep rounds every intermediate amount as it is computed
	RoundEachStep RoundingMode = "each_step"
	// RoundAtEnd keeps exact decimals and rounds totals once
	RoundAtEnd RoundingMode = "at_end"
)

// Frequency is a premium payment frequency
type Frequency string

const (
	FrequencyMonthly    Frequency = "mensuelle"
	FrequencyQuarterly  Frequency = "trimestrielle"
	FrequencySemiannual Frequency = "semestrielle"
	FrequencyAnnual     Frequency = "annuelle"
)

// AllFrequencies lists payment frequencies from most to least frequent
func AllFrequencies() []Frequency {
	return []Frequency{FrequencyMonthly, FrequencyQuarterly, FrequencySemiannual, FrequencyAnnual}
}

// PaymentsPerYear returns the number of installments per year, or 0 when unknown
func (f Frequency) PaymentsPerYear() int {
	switch f {
	case FrequencyMonthly:
		return 12
	case FrequencyQuarterly:
		return 4
	case FrequencySemiannual:
		return 2
	case FrequencyAnnual:
		return 1
	}
	return 0
}
