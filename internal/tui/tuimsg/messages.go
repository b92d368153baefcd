// Package tuimsg holds the messages scenes send to the root model.
package tuimsg

import (
	"github.com/assurlink/courtage/internal/domain"
)

// ProductSelectedMsg signals a product was picked on the home scene
type ProductSelectedMsg struct {
	Product domain.Product
}

// FormSubmittedMsg carries the raw values typed into a product form.
// Values are strings or string slices; form.Parse coerces them.
type FormSubmittedMsg struct {
	Product domain.Product
	Values  map[string]interface{}
}

// CompareRequestedMsg asks for the last quote to be compared with templates
type CompareRequestedMsg struct {
	Templates []string
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}
