package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders a quote into one output format
type Formatter interface {
	Name() string
	Format(q *domain.Quote) ([]byte, error)
}

// FormatterFunc adapts a function to Formatter
type FormatterFunc struct {
	ID string
	F  func(q *domain.Quote) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(q *domain.Quote) ([]byte, error) { return f.F(q) }

var formatters = map[string]Formatter{}

var aliases = map[string]string{
	"text":    "console",
	"verbose": "console",
	"excel":   "xlsx",
	"lite":    "console-lite",
}

func register(f Formatter) {
	formatters[f.Name()] = f
}

func init() {
	register(ConsoleFormatter{})
	register(ConsoleLiteFormatter{})
	register(JSONFormatter{})
	register(CSVFormatter{})
	register(HTMLFormatter{})
	register(PDFFormatter{})
	register(XLSXFormatter{})
}

// GetFormatterByName returns the formatter registered under name or alias, nil if none
func GetFormatterByName(name string) Formatter {
	name = strings.ToLower(strings.TrimSpace(name))
	if target, ok := aliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// AvailableFormatterNames lists registered formatter names, sorted
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists accepted aliases, sorted
func AvailableFormatAliases() []string {
	out := make([]string, 0, len(aliases))
	for a := range aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Extension returns the file extension for a formatter name
func Extension(name string) string {
	switch name {
	case "console", "console-lite":
		return "txt"
	}
	return name
}

// ContentType returns the MIME type served for a formatter name
func ContentType(name string) string {
	switch name {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	case "pdf":
		return "application/pdf"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/plain; charset=utf-8"
}

// WriteFormatted writes the formatted quote to a timestamped file in the
// working directory and returns its name
func WriteFormatted(f Formatter, q *domain.Quote, ext string) (string, error) {
	data, err := f.Format(q)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("devis_%s_%s.%s", q.Product, time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

// FormatAmount formats an amount in whole francs with space-grouped thousands: 45 000
func FormatAmount(amount decimal.Decimal) string {
	s := amount.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatFCFA formats an amount as currency: 45 000 FCFA
func FormatFCFA(amount decimal.Decimal) string {
	return FormatAmount(amount) + " FCFA"
}

// FormatRate formats a fractional rate as a percentage: 0.15 -> 15 %
func FormatRate(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).Round(2).String() + " %"
}
