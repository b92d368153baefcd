package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/assurlink/courtage/internal/domain"
)

// HTMLFormatter produces a printable HTML quote
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/quote.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("quote").Funcs(template.FuncMap{
	"fcfa":   FormatFCFA,
	"amount": FormatAmount,
	"rate":   FormatRate,
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(q *domain.Quote) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Quote *domain.Quote
		Notes []string
	}{q, Notes(q)}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
