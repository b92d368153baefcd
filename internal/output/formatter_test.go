package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildQuote(t *testing.T, req *domain.QuoteRequest) *domain.Quote {
	t.Helper()
	engine := calculation.NewCalculationEngine()
	engine.Now = func() time.Time { return time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) }
	q, err := engine.Quote(req)
	require.NoError(t, err)
	q.ID = "Q-TEST"
	return q
}

func autoQuote(t *testing.T) *domain.Quote {
	return buildQuote(t, &domain.QuoteRequest{Product: domain.ProductAuto, Auto: &domain.AutoInput{
		FiscalPower: 7, Usage: "prive", Seats: 5, BonusMalus: "neutre", DurationMonths: 12,
	}})
}

func savingsQuote(t *testing.T) *domain.Quote {
	return buildQuote(t, &domain.QuoteRequest{Product: domain.ProductSavings, Savings: &domain.SavingsInput{
		MonthlyContribution: decimal.NewFromInt(10000), DurationYears: 3,
	}})
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{45000, "45 000"},
		{1234567, "1 234 567"},
		{-62250, "-62 250"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.NewFromInt(tt.in)))
		})
	}
	assert.Equal(t, "45 000 FCFA", FormatFCFA(decimal.NewFromInt(45000)))
	assert.Equal(t, "1 001 FCFA", FormatFCFA(decimal.RequireFromString("1000.5")))
	assert.Equal(t, "15 %", FormatRate(decimal.RequireFromString("0.15")))
	assert.Equal(t, "3.5 %", FormatRate(decimal.RequireFromString("0.035")))
}

func TestFormatterFunc(t *testing.T) {
	var received *domain.Quote
	f := FormatterFunc{ID: "test-formatter", F: func(q *domain.Quote) ([]byte, error) {
		received = q
		return []byte("test output"), nil
	}}
	q := &domain.Quote{Product: domain.ProductAuto}

	out, err := f.Format(q)
	require.NoError(t, err)
	assert.Equal(t, "test-formatter", f.Name())
	assert.Same(t, q, received)
	assert.Equal(t, []byte("test output"), out)
}

func TestWriteFormatted(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(originalDir)

	ok := FormatterFunc{ID: "ok", F: func(*domain.Quote) ([]byte, error) { return []byte("contenu"), nil }}
	filename, err := WriteFormatted(ok, &domain.Quote{Product: domain.ProductFuneral}, "txt")
	require.NoError(t, err)
	assert.Contains(t, filename, "devis_obseques_")
	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "contenu", string(content))

	failing := FormatterFunc{ID: "ko", F: func(*domain.Quote) ([]byte, error) { return nil, fmt.Errorf("formatter error") }}
	filename, err = WriteFormatted(failing, &domain.Quote{}, "txt")
	assert.Error(t, err)
	assert.Empty(t, filename)
}

func TestGetFormatterByName(t *testing.T) {
	for _, name := range []string{"console", "console-lite", "json", "csv", "html", "pdf", "xlsx"} {
		f := GetFormatterByName(name)
		require.NotNil(t, f, name)
		assert.Equal(t, name, f.Name())
	}
	assert.Equal(t, "console", GetFormatterByName("verbose").Name())
	assert.Equal(t, "xlsx", GetFormatterByName(" Excel ").Name())
	assert.Nil(t, GetFormatterByName("docx"))

	assert.Contains(t, AvailableFormatterNames(), "pdf")
	assert.Contains(t, AvailableFormatAliases(), "text")
	assert.Equal(t, "txt", Extension("console"))
	assert.Equal(t, "application/pdf", ContentType("pdf"))
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(autoQuote(t))
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "DEVIS ASSURANCE AUTOMOBILE")
	assert.Contains(t, content, "Référence : Q-TEST")
	assert.Contains(t, content, "TOTAL À PAYER")
	assert.Contains(t, content, "45 000 FCFA", "net RC premium")
	assert.Contains(t, content, "RESPONSABILITÉ CIVILE")

	out, err = ConsoleFormatter{}.Format(savingsQuote(t))
	require.NoError(t, err)
	assert.Contains(t, string(out), "PROJECTION DE CAPITALISATION")
	assert.Contains(t, string(out), "Taux technique annuel")
}

func TestConsoleLiteFormatter(t *testing.T) {
	q := savingsQuote(t)
	out, err := ConsoleLiteFormatter{}.Format(q)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Capital final : "+FormatFCFA(q.Projection.FinalCapital))
}

func TestJSONFormatter(t *testing.T) {
	q := savingsQuote(t)
	out, err := JSONFormatter{}.Format(q)
	require.NoError(t, err)

	var decoded domain.Quote
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, domain.ProductSavings, decoded.Product)
	assert.True(t, q.Breakdown.Total.Equal(decoded.Breakdown.Total))
	require.NotNil(t, decoded.Projection)
	assert.Len(t, decoded.Projection.Years, 3)
}

func TestCSVFormatter(t *testing.T) {
	q := savingsQuote(t)
	out, err := CSVFormatter{}.Format(q)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	// header, lines, total, projection header, 3 years
	assert.Len(t, rows, 1+len(q.Breakdown.Lines)+1+1+3)
	assert.Equal(t, "total", rows[len(q.Breakdown.Lines)+1][1])
	assert.Equal(t, q.Projection.FinalCapital.StringFixed(0), rows[len(rows)-1][6])
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(savingsQuote(t))
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "<!DOCTYPE html>")
	assert.Contains(t, content, "<title>Devis Épargne")
	assert.Contains(t, content, "Projection de capitalisation")
}

func TestPDFFormatter(t *testing.T) {
	out, err := PDFFormatter{}.Format(savingsQuote(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestXLSXFormatter(t *testing.T) {
	q := savingsQuote(t)
	out, err := XLSXFormatter{}.Format(q)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"devis", "projection"}, f.GetSheetList())
	capital, err := f.GetCellValue("projection", "F4")
	require.NoError(t, err)
	assert.Equal(t, q.Projection.FinalCapital.StringFixed(0), capital)
}
