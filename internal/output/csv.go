package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/assurlink/courtage/internal/domain"
)

// CSVFormatter writes one row per breakdown line, then one row per projected year
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(q *domain.Quote) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	rows := [][]string{{"Section", "Code", "Libelle", "Type", "Base", "Taux", "Montant"}}
	for _, l := range q.Breakdown.Lines {
		rows = append(rows, []string{"prime", l.Code, l.Label, string(l.Kind), l.Base.StringFixed(0), l.Rate.String(), l.Amount.StringFixed(0)})
	}
	rows = append(rows, []string{"prime", "total", "Total à payer", "", "", "", q.Breakdown.Total.StringFixed(0)})

	if p := q.Projection; p != nil {
		rows = append(rows, []string{"Section", "Annee", "Versements", "TauxFrais", "Frais", "Interets", "Capital"})
		for _, y := range p.Years {
			rows = append(rows, []string{
				"projection",
				strconv.Itoa(y.Year),
				y.Contributions.StringFixed(0),
				y.FeeRate.String(),
				y.Fees.StringFixed(0),
				y.Interest.StringFixed(0),
				y.Capital.StringFixed(0),
			})
		}
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
