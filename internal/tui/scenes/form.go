package scenes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/form"
	"github.com/assurlink/courtage/internal/tui/tuimsg"
	"github.com/assurlink/courtage/internal/tui/tuistyles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

type formRow struct {
	spec  form.FieldSpec
	input textinput.Model
}

// FormModel edits the quote form of one product. Choice and toggle fields
// cycle with left/right; multi-choice fields take a comma-separated list.
type FormModel struct {
	product domain.Product
	title   string
	rows    []formRow
	focus   int
	errKey  string
	errText string
	width   int
	height  int
}

// NewFormModel creates an empty form scene
func NewFormModel() *FormModel {
	return &FormModel{}
}

// SetForm replaces the edited form. Inputs are prefilled with field defaults.
func (m *FormModel) SetForm(spec form.Spec) {
	m.product = spec.Product
	m.title = spec.Title
	m.rows = make([]formRow, 0, len(spec.Fields))
	m.focus = 0
	m.errKey, m.errText = "", ""

	for _, fs := range spec.Fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		in.Width = 30
		in.SetValue(defaultText(fs))
		switch fs.Kind {
		case form.KindNumber:
			in.Placeholder = numberHint(fs)
		case form.KindMultiChoice:
			in.Placeholder = "codes séparés par des virgules"
		}
		m.rows = append(m.rows, formRow{spec: fs, input: in})
	}
	if len(m.rows) > 0 {
		m.rows[0].input.Focus()
	}
}

// Product returns the product being edited
func (m *FormModel) Product() domain.Product { return m.product }

func defaultText(fs form.FieldSpec) string {
	switch d := fs.Default.(type) {
	case nil:
	case *decimal.Decimal:
		if d != nil {
			return d.String()
		}
	case decimal.Decimal:
		return d.String()
	case string:
		return d
	case bool:
		if d {
			return "oui"
		}
		return "non"
	}
	if fs.Kind == form.KindChoice && fs.Required && len(fs.Options) > 0 {
		return fs.Options[0].Value
	}
	return ""
}

func numberHint(fs form.FieldSpec) string {
	var parts []string
	if fs.Min != nil {
		parts = append(parts, "min "+fs.Min.String())
	}
	if fs.Max != nil {
		parts = append(parts, "max "+fs.Max.String())
	}
	if fs.Unit != "" {
		parts = append(parts, fs.Unit)
	}
	return strings.Join(parts, ", ")
}

// SetError highlights the field named by a validation error
func (m *FormModel) SetError(err error) {
	m.errKey, m.errText = "", ""
	if err == nil {
		return
	}
	m.errText = err.Error()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		m.errKey = ve.Field
		m.errText = ve.Reason
		for i, r := range m.rows {
			if r.spec.Key == ve.Field || strings.HasSuffix(ve.Field, "."+r.spec.Key) {
				m.setFocus(i)
				break
			}
		}
	}
}

// SetSize updates the model dimensions
func (m *FormModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *FormModel) setFocus(i int) {
	if len(m.rows) == 0 {
		return
	}
	i = (i + len(m.rows)) % len(m.rows)
	m.rows[m.focus].input.Blur()
	m.focus = i
	m.rows[m.focus].input.Focus()
}

// cycle moves a choice or toggle field to the next or previous value
func (m *FormModel) cycle(step int) bool {
	row := &m.rows[m.focus]
	var values []string
	switch row.spec.Kind {
	case form.KindChoice:
		if !row.spec.Required {
			values = append(values, "")
		}
		for _, o := range row.spec.Options {
			values = append(values, o.Value)
		}
	case form.KindToggle:
		values = []string{"non", "oui"}
	default:
		return false
	}
	cur := 0
	for i, v := range values {
		if v == row.input.Value() {
			cur = i
			break
		}
	}
	row.input.SetValue(values[(cur+step+len(values))%len(values)])
	return true
}

// Values returns the non-blank inputs keyed by field
func (m *FormModel) Values() map[string]interface{} {
	out := make(map[string]interface{}, len(m.rows))
	for _, r := range m.rows {
		v := strings.TrimSpace(r.input.Value())
		if v == "" {
			continue
		}
		out[r.spec.Key] = v
	}
	return out
}

func (m *FormModel) submit() tea.Cmd {
	p, values := m.product, m.Values()
	return func() tea.Msg { return tuimsg.FormSubmittedMsg{Product: p, Values: values} }
}

// Update handles messages for the form scene
func (m *FormModel) Update(msg tea.Msg) (*FormModel, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.setFocus(m.focus + 1)
			return m, nil
		case "shift+tab", "up":
			m.setFocus(m.focus - 1)
			return m, nil
		case "left":
			if m.cycle(-1) {
				return m, nil
			}
		case "right", " ":
			if m.cycle(1) {
				return m, nil
			}
		case "ctrl+s":
			return m, m.submit()
		case "enter":
			if m.focus == len(m.rows)-1 {
				return m, m.submit()
			}
			m.setFocus(m.focus + 1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.rows[m.focus].input, cmd = m.rows[m.focus].input.Update(msg)
	return m, cmd
}

// View renders the form
func (m *FormModel) View() string {
	if len(m.rows) == 0 {
		return tuistyles.InfoStyle.Render("Choisissez d'abord un produit")
	}

	var b strings.Builder
	b.WriteString(tuistyles.SectionStyle.Render(m.title))
	b.WriteString("\n")

	for i, r := range m.rows {
		label := r.spec.Label
		if r.spec.Required {
			label += " *"
		}
		labelStyle := tuistyles.UnselectedItemStyle
		marker := "  "
		if i == m.focus {
			labelStyle = tuistyles.SelectedItemStyle
			marker = "▸ "
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(fmt.Sprintf("%s%-32s", marker, label)),
			r.input.View(),
		)
		b.WriteString(line)
		b.WriteString("\n")

		if i == m.focus {
			if hint := fieldHint(r.spec); hint != "" {
				b.WriteString(tuistyles.HelpStyle.Render("    " + hint))
				b.WriteString("\n")
			}
		}
		if m.errKey != "" && (r.spec.Key == m.errKey || strings.HasSuffix(m.errKey, "."+r.spec.Key)) {
			b.WriteString(tuistyles.ErrorStyle.Render("    " + m.errText))
			b.WriteString("\n")
		}
	}

	if m.errText != "" && m.errKey == "" {
		b.WriteString("\n")
		b.WriteString(tuistyles.ErrorStyle.Render(m.errText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(tuistyles.HelpStyle.Render("tab/↑↓ champ • ←→ choix • entrée sur le dernier champ ou ctrl+s : calculer"))
	return b.String()
}

func fieldHint(fs form.FieldSpec) string {
	switch fs.Kind {
	case form.KindChoice, form.KindMultiChoice:
		values := make([]string, 0, len(fs.Options))
		for _, o := range fs.Options {
			values = append(values, o.Value)
		}
		return strings.Join(values, ", ")
	}
	return fs.Help
}
