package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
)

const consoleWidth = 64

// ConsoleFormatter renders the detailed text quote
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(q *domain.Quote) ([]byte, error) {
	var buf bytes.Buffer
	rule := strings.Repeat("=", consoleWidth)
	thin := strings.Repeat("-", consoleWidth)

	fmt.Fprintln(&buf, rule)
	fmt.Fprintf(&buf, "DEVIS %s\n", strings.ToUpper(q.Product.Label()))
	fmt.Fprintln(&buf, rule)
	if q.ID != "" {
		fmt.Fprintf(&buf, "Référence : %s\n", q.ID)
	}
	if q.Request.Name != "" {
		fmt.Fprintf(&buf, "Scénario  : %s\n", q.Request.Name)
	}
	if !q.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "Date      : %s\n", q.CreatedAt.Format("02/01/2006"))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "DÉCOMPOSITION DE LA PRIME")
	fmt.Fprintln(&buf, thin)
	for _, l := range q.Breakdown.Lines {
		fmt.Fprintln(&buf, amountRow(l.Label, FormatFCFA(l.Amount)))
	}
	fmt.Fprintln(&buf, thin)
	fmt.Fprintln(&buf, amountRow("TOTAL À PAYER", FormatFCFA(q.Breakdown.Total)))
	fmt.Fprintln(&buf)

	writeDetail(&buf, q)

	if p := q.Projection; p != nil {
		fmt.Fprintln(&buf, "PROJECTION DE CAPITALISATION")
		fmt.Fprintln(&buf, thin)
		fmt.Fprintf(&buf, "%-5s %12s %7s %10s %12s %14s\n", "Année", "Versements", "Frais", "Frais", "Intérêts", "Capital")
		for _, y := range p.Years {
			fmt.Fprintf(&buf, "%-5d %12s %7s %10s %12s %14s\n",
				y.Year, FormatAmount(y.Contributions), FormatRate(y.FeeRate), FormatAmount(y.Fees),
				FormatAmount(y.Interest), FormatAmount(y.Capital))
		}
		fmt.Fprintln(&buf, thin)
		fmt.Fprintln(&buf, amountRow("Total versé", FormatFCFA(p.TotalContributions)))
		fmt.Fprintln(&buf, amountRow("Total des frais", FormatFCFA(p.TotalFees)))
		fmt.Fprintln(&buf, amountRow("Intérêts acquis", FormatFCFA(p.TotalInterest)))
		fmt.Fprintln(&buf, amountRow("Capital constitué", FormatFCFA(p.FinalCapital)))
		fmt.Fprintln(&buf)
	}

	if len(q.Warnings) > 0 {
		fmt.Fprintln(&buf, "AVERTISSEMENTS")
		fmt.Fprintln(&buf, thin)
		for _, w := range q.Warnings {
			fmt.Fprintf(&buf, "! %s\n", w)
		}
		fmt.Fprintln(&buf)
	}

	fmt.Fprintln(&buf, "HYPOTHÈSES")
	for _, n := range Notes(q) {
		fmt.Fprintf(&buf, "- %s\n", n)
	}
	return buf.Bytes(), nil
}

func writeDetail(buf *bytes.Buffer, q *domain.Quote) {
	switch {
	case q.Auto != nil:
		a := q.Auto
		fmt.Fprintln(buf, "RESPONSABILITÉ CIVILE")
		for _, r := range []domain.Resolution{a.RCBase, a.Usage, a.Seats, a.BonusMalus, a.Duration, a.Franchise} {
			mark := ""
			if r.Fallback {
				mark = " (défaut)"
			}
			fmt.Fprintf(buf, "  %-20s %-22s %s%s\n", r.Table, r.Key, r.Value.String(), mark)
		}
		fmt.Fprintln(buf, amountRow("  Prime RC", FormatFCFA(a.PrimeRC)))
		for _, c := range a.Coverages {
			fmt.Fprintln(buf, amountRow("  "+c.Label, FormatFCFA(c.Amount)))
		}
		fmt.Fprintln(buf)
	case q.Education != nil:
		e := q.Education
		fmt.Fprintln(buf, "RENTE ÉTUDES")
		fmt.Fprintln(buf, amountRow("  Rente annuelle", FormatFCFA(e.AnnualRent)))
		fmt.Fprintln(buf, amountRow(fmt.Sprintf("  Total sur %d ans", e.RentYears), FormatFCFA(e.TotalRent)))
		fmt.Fprintln(buf)
	case q.MoloMolo != nil:
		m := q.MoloMolo
		fmt.Fprintln(buf, "GARANTIES MOLO MOLO")
		fmt.Fprintf(buf, "  Versements par an : %d\n", m.PaymentsPerYear)
		fmt.Fprintln(buf, amountRow("  Cotisation annuelle", FormatFCFA(m.AnnualContribution)))
		fmt.Fprintln(buf, amountRow("  Capital décès", FormatFCFA(m.DeathBenefit)))
		fmt.Fprintln(buf)
	case q.Funeral != nil:
		f := q.Funeral
		fmt.Fprintf(buf, "FORMULE %s (capital %s)\n", strings.ToUpper(f.Tier), FormatFCFA(f.Capital))
		for _, m := range f.Members {
			who := m.Role
			if m.Age > 0 {
				who = fmt.Sprintf("%s, %d ans", m.Role, m.Age)
			}
			fmt.Fprintln(buf, amountRow("  "+who, FormatFCFA(m.Monthly)+"/mois"))
		}
		fmt.Fprintln(buf, amountRow(fmt.Sprintf("  Échéance (%d par an)", f.PaymentsPerYear), FormatFCFA(f.Installment)))
		fmt.Fprintln(buf, amountRow("  Prime annuelle", FormatFCFA(f.AnnualPremium)))
		fmt.Fprintln(buf)
	}
}

func amountRow(label, amount string) string {
	pad := consoleWidth - len([]rune(label)) - len([]rune(amount))
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + amount
}

// ConsoleLiteFormatter renders a one-screen summary
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string { return "console-lite" }

func (c ConsoleLiteFormatter) Format(q *domain.Quote) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", q.Product.Label())
	fmt.Fprintf(&buf, "Total à payer : %s\n", FormatFCFA(q.Breakdown.Total))
	if q.Projection != nil {
		fmt.Fprintf(&buf, "Capital final : %s\n", FormatFCFA(q.Projection.FinalCapital))
	}
	if q.Funeral != nil {
		fmt.Fprintf(&buf, "Échéance      : %s\n", FormatFCFA(q.Funeral.Installment))
	}
	for _, w := range q.Warnings {
		fmt.Fprintf(&buf, "! %s\n", w)
	}
	return buf.Bytes(), nil
}
