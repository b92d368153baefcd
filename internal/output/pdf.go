package output

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/jung-kurt/gofpdf"
)

// PDFFormatter renders a one-page printable quote
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

func (p PDFFormatter) Format(q *domain.Quote) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, tr("Devis "+q.Product.Label()))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if q.ID != "" {
		pdf.Cell(0, 6, tr("Référence : "+q.ID))
		pdf.Ln(5)
	}
	if !q.CreatedAt.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Date : %s", q.CreatedAt.Format("02/01/2006")))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 6, "Poste", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Montant (FCFA)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, l := range q.Breakdown.Lines {
		pdf.CellFormat(120, 6, tr(l.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, FormatAmount(l.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 6, tr("Total à payer"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, FormatAmount(q.Breakdown.Total), "1", 0, "R", false, 0, "")
	pdf.Ln(10)

	if proj := q.Projection; proj != nil {
		pdf.SetFont("Arial", "B", 10)
		for _, h := range []string{"Année", "Versements", "Frais", "Intérêts", "Capital"} {
			pdf.CellFormat(34, 6, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, y := range proj.Years {
			pdf.CellFormat(34, 5, strconv.Itoa(y.Year), "1", 0, "C", false, 0, "")
			pdf.CellFormat(34, 5, FormatAmount(y.Contributions), "1", 0, "R", false, 0, "")
			pdf.CellFormat(34, 5, FormatAmount(y.Fees), "1", 0, "R", false, 0, "")
			pdf.CellFormat(34, 5, FormatAmount(y.Interest), "1", 0, "R", false, 0, "")
			pdf.CellFormat(34, 5, FormatAmount(y.Capital), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, tr("Capital constitué : "+FormatFCFA(proj.FinalCapital)))
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "I", 8)
	for _, w := range q.Warnings {
		pdf.MultiCell(0, 4, tr("! "+w), "", "L", false)
	}
	for _, n := range Notes(q) {
		pdf.MultiCell(0, 4, tr(n), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
