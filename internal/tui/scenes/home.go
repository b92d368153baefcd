package scenes

import (
	"fmt"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/tui/tuimsg"
	"github.com/assurlink/courtage/internal/tui/tuistyles"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type productItem struct {
	product domain.Product
	desc    string
}

func (i productItem) Title() string       { return i.product.Label() }
func (i productItem) Description() string { return i.desc }
func (i productItem) FilterValue() string { return i.product.Label() }

// HomeModel is the product picker
type HomeModel struct {
	list   list.Model
	rates  *domain.RateTables
	width  int
	height int
}

// NewHomeModel creates the product picker
func NewHomeModel() *HomeModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Choisir un produit"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = tuistyles.TitleStyle
	return &HomeModel{list: l}
}

// SetRates fills the list from the tariff in force
func (m *HomeModel) SetRates(rates *domain.RateTables) {
	m.rates = rates
	items := make([]list.Item, 0, len(domain.AllProducts()))
	for _, p := range domain.AllProducts() {
		items = append(items, productItem{product: p, desc: productHint(p, rates)})
	}
	m.list.SetItems(items)
}

func productHint(p domain.Product, rates *domain.RateTables) string {
	if rates == nil {
		return ""
	}
	switch p {
	case domain.ProductAuto:
		return fmt.Sprintf("Responsabilité civile et garanties, %d garanties optionnelles", len(rates.Auto.Coverages))
	case domain.ProductFuneral:
		return fmt.Sprintf("%d formules de capital obsèques", len(rates.Funeral.Tiers))
	}
	if p.IsCapitalisation() {
		return "Contrat de capitalisation, projection année par année"
	}
	return ""
}

// SetSize updates the model dimensions
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

// Selected returns the highlighted product
func (m *HomeModel) Selected() (domain.Product, bool) {
	item, ok := m.list.SelectedItem().(productItem)
	if !ok {
		return "", false
	}
	return item.product, true
}

// Update handles messages for the home scene
func (m *HomeModel) Update(msg tea.Msg) (*HomeModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if p, ok := m.Selected(); ok {
			return m, func() tea.Msg { return tuimsg.ProductSelectedMsg{Product: p} }
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the product list
func (m *HomeModel) View() string {
	if m.rates == nil {
		return tuistyles.InfoStyle.Render("Chargement du tarif...")
	}
	return m.list.View()
}
