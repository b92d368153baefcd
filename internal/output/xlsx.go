package output

import (
	"bytes"
	"fmt"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/xuri/excelize/v2"
)

// XLSXFormatter writes a workbook with a breakdown sheet and, for
// capitalisation products, a projection sheet
type XLSXFormatter struct{}

func (x XLSXFormatter) Name() string { return "xlsx" }

func (x XLSXFormatter) Format(q *domain.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary := "devis"
	f.SetSheetName("Sheet1", summary)

	_ = f.SetCellValue(summary, "A1", "Devis "+q.Product.Label())
	_ = f.SetCellValue(summary, "A2", "Référence")
	_ = f.SetCellValue(summary, "B2", q.ID)
	_ = f.SetCellValue(summary, "A4", "Poste")
	_ = f.SetCellValue(summary, "B4", "Type")
	_ = f.SetCellValue(summary, "C4", "Montant (FCFA)")
	row := 5
	for _, l := range q.Breakdown.Lines {
		_ = f.SetCellValue(summary, fmt.Sprintf("A%d", row), l.Label)
		_ = f.SetCellValue(summary, fmt.Sprintf("B%d", row), string(l.Kind))
		_ = f.SetCellValue(summary, fmt.Sprintf("C%d", row), l.Amount.IntPart())
		row++
	}
	_ = f.SetCellValue(summary, fmt.Sprintf("A%d", row), "Total à payer")
	_ = f.SetCellValue(summary, fmt.Sprintf("C%d", row), q.Breakdown.Total.IntPart())

	if p := q.Projection; p != nil {
		sheet := "projection"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		for i, h := range []string{"Année", "Versements", "Taux de frais", "Frais", "Intérêts", "Capital"} {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(sheet, cell, h)
		}
		for i, y := range p.Years {
			r := i + 2
			rate, _ := y.FeeRate.Float64()
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", r), y.Year)
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", r), y.Contributions.IntPart())
			_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", r), rate)
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", r), y.Fees.IntPart())
			_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", r), y.Interest.IntPart())
			_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", r), y.Capital.IntPart())
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
