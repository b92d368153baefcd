package transform

import (
	"sort"
	"strconv"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in quote variants
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms for one product
type Template struct {
	Name        string
	Description string
	Product     domain.Product
	Transforms  []QuoteTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForProduct returns the templates applicable to p, sorted by name
func (tr *TemplateRegistry) ForProduct(p domain.Product) []Template {
	var out []Template
	for _, name := range tr.List() {
		if t := tr.templates[name]; t.Product == p {
			out = append(out, t)
		}
	}
	return out
}

// CreateBuiltInTemplates creates a template registry with the usual sales variants
func CreateBuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()

	// Motor
	registry.Register(Template{
		Name:        "auto_semestre",
		Description: "Contrat de 6 mois",
		Product:     domain.ProductAuto,
		Transforms:  []QuoteTransform{&SetDuration{Months: 6}},
	})
	registry.Register(Template{
		Name:        "auto_vol_incendie",
		Description: "Ajout des garanties vol et incendie",
		Product:     domain.ProductAuto,
		Transforms: []QuoteTransform{
			&AddCoverage{Code: "vol"},
			&AddCoverage{Code: "incendie"},
		},
	})
	registry.Register(Template{
		Name:        "auto_tous_risques",
		Description: "Formule tous risques : tierce complète, vol, incendie et bris de glace",
		Product:     domain.ProductAuto,
		Transforms: []QuoteTransform{
			&AddCoverage{Code: "tierce_complete"},
			&AddCoverage{Code: "vol"},
			&AddCoverage{Code: "incendie"},
			&AddCoverage{Code: "bris_de_glace"},
		},
	})

	// Savings
	for _, years := range []int{5, 10} {
		registry.Register(Template{
			Name:        "epargne_" + strconv.Itoa(years) + "ans",
			Description: "Épargne sur " + strconv.Itoa(years) + " ans",
			Product:     domain.ProductSavings,
			Transforms:  []QuoteTransform{&SetDuration{Years: years}},
		})
	}
	registry.Register(Template{
		Name:        "epargne_25000",
		Description: "Cotisation mensuelle de 25 000 FCFA",
		Product:     domain.ProductSavings,
		Transforms:  []QuoteTransform{&SetContribution{Amount: decimal.NewFromInt(25000)}},
	})

	// Education
	registry.Register(Template{
		Name:        "etudes_rente_5ans",
		Description: "Rente études versée sur 5 ans",
		Product:     domain.ProductEducation,
		Transforms:  []QuoteTransform{&SetRentYears{Years: 5}},
	})

	// Molo Molo
	registry.Register(Template{
		Name:        "molo_annuel",
		Description: "Versement annuel",
		Product:     domain.ProductMoloMolo,
		Transforms:  []QuoteTransform{&SetFrequency{Frequency: domain.FrequencyAnnual}},
	})

	// Funeral
	for _, tier := range []string{"essentiel", "confort", "prestige"} {
		registry.Register(Template{
			Name:        "obseques_" + tier,
			Description: "Formule " + tier,
			Product:     domain.ProductFuneral,
			Transforms:  []QuoteTransform{&SetTier{Tier: tier}},
		})
	}
	registry.Register(Template{
		Name:        "obseques_annuel",
		Description: "Prime annuelle",
		Product:     domain.ProductFuneral,
		Transforms:  []QuoteTransform{&SetFrequency{Frequency: domain.FrequencyAnnual}},
	})

	return registry
}
