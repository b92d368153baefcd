package output

import (
	"github.com/assurlink/courtage/internal/domain"
	"github.com/goccy/go-json"
)

// JSONFormatter renders the full quote as indented JSON
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(q *domain.Quote) ([]byte, error) {
	return json.MarshalIndent(q, "", "  ")
}
