package scenes

import (
	"testing"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/form"
	"github.com/assurlink/courtage/internal/transform"
	"github.com/assurlink/courtage/internal/tui/tuimsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formFor(t *testing.T, p domain.Product) *FormModel {
	t.Helper()
	f, err := form.ForProduct(p, calculation.DefaultRateTables())
	require.NoError(t, err)
	spec, err := f.Describe()
	require.NoError(t, err)
	m := NewFormModel()
	m.SetForm(spec)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFormModel_Defaults(t *testing.T) {
	m := formFor(t, domain.ProductAuto)

	values := m.Values()
	assert.Equal(t, "prive", values["usage"])
	assert.Equal(t, "neutre", values["bonus_malus"])
	assert.Equal(t, "5", values["seats"])
	assert.Equal(t, "12", values["duration_months"])
	assert.Equal(t, "non", values["cross_border_card"])
	assert.NotContains(t, values, "fiscal_power")
	assert.NotContains(t, values, "coverages")
}

func TestFormModel_ChoiceCycling(t *testing.T) {
	m := formFor(t, domain.ProductAuto)

	m, _ = m.Update(key("tab")) // usage
	before := m.Values()["usage"]
	m, _ = m.Update(key("right"))
	after := m.Values()["usage"]
	assert.NotEqual(t, before, after)
	m, _ = m.Update(key("left"))
	assert.Equal(t, before, m.Values()["usage"])

	// number fields take the arrow keys as cursor moves
	m, _ = m.Update(key("tab"))
	m, _ = m.Update(key("right"))
	assert.Equal(t, "5", m.Values()["seats"])
}

func TestFormModel_Toggle(t *testing.T) {
	m := formFor(t, domain.ProductAuto)
	for range 8 {
		m, _ = m.Update(key("tab"))
	}
	m, _ = m.Update(key("space"))
	assert.Equal(t, "oui", m.Values()["cross_border_card"])
	m, _ = m.Update(key("space"))
	assert.Equal(t, "non", m.Values()["cross_border_card"])
}

func TestFormModel_SubmitOnLastField(t *testing.T) {
	m := formFor(t, domain.ProductSavings)
	m, _ = m.Update(key("1"))
	m, _ = m.Update(key("0"))
	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		_, ok := cmd().(tuimsg.FormSubmittedMsg)
		assert.False(t, ok, "enter on the first field moves on")
	}

	m, _ = m.Update(key("3"))
	_, cmd = m.Update(key("enter"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(tuimsg.FormSubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, domain.ProductSavings, msg.Product)
	assert.Equal(t, "10", msg.Values["monthly_contribution"])
	assert.Equal(t, "3", msg.Values["duration_years"])
}

func TestFormModel_SetError(t *testing.T) {
	m := formFor(t, domain.ProductFuneral)

	m.SetError(domain.NewValidationError("principal_age", "champ obligatoire"))
	assert.Equal(t, 1, m.focus)
	assert.Contains(t, m.View(), "champ obligatoire")

	m.SetError(nil)
	assert.NotContains(t, m.View(), "champ obligatoire")
}

func TestHomeModel_Select(t *testing.T) {
	m := NewHomeModel()
	assert.Contains(t, m.View(), "Chargement")

	m.SetRates(calculation.DefaultRateTables())
	m.SetSize(80, 30)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.ProductSavings, p)

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, tuimsg.ProductSelectedMsg{Product: domain.ProductSavings}, cmd())
}

func TestCompareModel_Selection(t *testing.T) {
	m := NewCompareModel()
	assert.Contains(t, m.View(), "Calculez d'abord")

	tpls := transform.CreateBuiltInTemplates().ForProduct(domain.ProductSavings)
	require.NotEmpty(t, tpls)
	m.SetTemplates(tpls)

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, []string{tpls[0].Name}, cmd().(tuimsg.CompareRequestedMsg).Templates, "cursor template when none checked")

	m.Update(key("a"))
	assert.Len(t, m.Chosen(), len(tpls))
	m.Update(key("space"))
	assert.Len(t, m.Chosen(), len(tpls)-1)
}
