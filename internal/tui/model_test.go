package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/session"
	"github.com/assurlink/courtage/internal/tui/tuimsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T) Model {
	t.Helper()
	s := session.Open(session.Identity{Subject: "agence-plateau", Role: session.RoleBroker}, t0)
	m := NewModel("", s)
	m.now = func() time.Time { return t0.Add(time.Hour) }
	m = apply(t, m, loadRatesCmd("")())
	require.NoError(t, m.err)
	require.NotNil(t, m.engine)
	return m
}

// apply feeds msg to the model and follows navigation commands
func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if nav, ok := cmd().(NavigateMsg); ok {
			m = apply(t, m, nav)
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func quoteAuto(t *testing.T, m Model) Model {
	t.Helper()
	m = apply(t, m, tuimsg.ProductSelectedMsg{Product: domain.ProductAuto})
	require.Equal(t, SceneForm, m.currentScene)

	// fiscal power is the only required field without a default
	m = apply(t, m, runes("7"))
	_, cmd := m.form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	submitted, ok := cmd().(tuimsg.FormSubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, "7", submitted.Values["fiscal_power"])

	return apply(t, m, quoteCmd(m.engine, submitted.Product, submitted.Values)())
}

func TestModel_LoadRates(t *testing.T) {
	m := newTestModel(t)
	assert.False(t, m.loading)
	assert.Equal(t, SceneHome, m.currentScene)
	p, ok := m.home.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.ProductAuto, p)

	bad := NewModel("/nonexistent/tarif.yaml", m.session)
	bad = apply(t, bad, loadRatesCmd("/nonexistent/tarif.yaml")())
	assert.Error(t, bad.err)
	assert.Nil(t, bad.engine)
}

func TestModel_QuoteFlow(t *testing.T) {
	m := quoteAuto(t, newTestModel(t))

	assert.Equal(t, SceneResults, m.currentScene)
	q := m.results.Quote()
	require.NotNil(t, q)
	assert.True(t, q.Breakdown.Total.Equal(decimal.NewFromInt(62250)), "got %s", q.Breakdown.Total)

	last, err := m.session.LastQuote()
	require.NoError(t, err)
	assert.Same(t, q, last)
	assert.Contains(t, m.View(), "Automobile")
}

func TestModel_QuoteValidationErrorStaysOnForm(t *testing.T) {
	m := newTestModel(t)
	m = apply(t, m, tuimsg.ProductSelectedMsg{Product: domain.ProductAuto})

	m = apply(t, m, quoteCmd(m.engine, domain.ProductAuto, map[string]interface{}{"usage": "prive"})())
	assert.Equal(t, SceneForm, m.currentScene)
	assert.Nil(t, m.err)
	assert.Contains(t, m.form.View(), "champ obligatoire")

	last, err := m.session.LastQuote()
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestModel_Compare(t *testing.T) {
	m := quoteAuto(t, newTestModel(t))
	m = apply(t, m, runes("c"))
	require.Equal(t, SceneCompare, m.currentScene)

	// the cursor starts on auto_semestre, the only template priced without a vehicle value
	m = apply(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	_, cmd := m.compareScene.Update(tea.KeyMsg{Type: tea.KeyEnter})
	req, ok := cmd().(tuimsg.CompareRequestedMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"auto_semestre"}, req.Templates)

	m = apply(t, m, compareCmd(m.comparer, m.lastRequest, req.Templates)())
	require.Nil(t, m.err)
	set := m.compareScene.Result()
	require.NotNil(t, set)
	require.Len(t, set.AlternativeResults, 1)
	assert.True(t, set.AlternativeResults[0].TotalDiffFromBase.IsNegative())
	assert.Contains(t, m.View(), "auto_semestre")

	m = apply(t, m, ComparisonCompleteMsg{Err: errors.New("boom")})
	assert.Error(t, m.err)
	m = apply(t, m, runes("x"))
	assert.Nil(t, m.err, "any key dismisses the error")
}

func TestModel_FormKeepsLetters(t *testing.T) {
	m := newTestModel(t)
	m = apply(t, m, tuimsg.ProductSelectedMsg{Product: domain.ProductAuto})

	for _, k := range []string{"h", "c", "q", "r"} {
		m = apply(t, m, runes(k))
		assert.Equal(t, SceneForm, m.currentScene, "key %s", k)
	}
	assert.False(t, m.session.Closed())

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, SceneHome, m.currentScene)
}

func TestModel_NavigationGuards(t *testing.T) {
	m := newTestModel(t)
	for _, k := range []string{"e", "r", "c"} {
		m = apply(t, m, runes(k))
		assert.Equal(t, SceneHome, m.currentScene, "key %s without a quote", k)
	}

	m = apply(t, m, runes("?"))
	assert.Equal(t, SceneHelp, m.currentScene)
	m = apply(t, m, runes("?"))
	assert.Equal(t, SceneHome, m.currentScene)
}

func TestModel_QuitClosesSession(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		form bool
	}{
		{"q on home", runes("q"), false},
		{"ctrl+c on form", tea.KeyMsg{Type: tea.KeyCtrlC}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			if tt.form {
				m = apply(t, m, tuimsg.ProductSelectedMsg{Product: domain.ProductSavings})
			}
			next, cmd := m.Update(tt.key)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.True(t, next.(Model).Session().Closed())
			assert.Equal(t, time.Hour, m.session.Duration(t0.Add(2*time.Hour)))
		})
	}
}

func TestModel_ClosedSessionRejectsWork(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.session.Close(t0))

	m = apply(t, m, tuimsg.ProductSelectedMsg{Product: domain.ProductAuto})
	assert.ErrorIs(t, m.err, session.ErrClosed)
	assert.Equal(t, SceneHome, m.currentScene)
}
