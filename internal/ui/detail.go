package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/storefront/internal/models"
)

type detailView struct {
	product models.Product
	err     error
}

// openDetail shows the row we have and refreshes it from the API.
func (m Model) openDetail(p models.Product) (tea.Model, tea.Cmd) {
	m.detail = detailView{product: p}
	m.screen = screenDetail
	if m.deps.Source == nil || p.ID == "" {
		return m, nil
	}
	ctx, source, id := m.ctx, m.deps.Source, p.ID
	return m, func() tea.Msg {
		product, err := source.GetProduct(ctx, id)
		return productMsg{id: id, product: product, err: err}
	}
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "q":
		m.screen = screenBrowse
		return m, nil
	case "e":
		if m.deps.Session.IsAdmin() {
			return m.openEdit(m.detail.product)
		}
	case "d":
		if m.deps.Session.IsAdmin() {
			return m, m.remove(m.detail.product.ID)
		}
	}
	return m, nil
}

func (m Model) viewDetail() string {
	p := m.detail.product
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(p.Title) + "\n")
	sb.WriteString(m.styles.Badge.Render(p.ProductType) + "  " + m.styles.Price.Render(models.FormatPrice(p.Price)) + "\n\n")
	if p.Description != "" {
		sb.WriteString(p.Description + "\n\n")
	}

	stock := fmt.Sprintf("%d in stock", p.AvailableQuantity)
	if p.AvailableQuantity == 0 {
		stock = "Out of stock"
	}
	sb.WriteString(m.styles.Muted.Render(stock) + "\n")
	sb.WriteString(m.styles.Muted.Render("Image: "+p.ImageURL()) + "\n")

	if m.detail.err != nil {
		sb.WriteString("\n" + m.styles.Warning.Render("Could not refresh: "+errorText(m.detail.err)) + "\n")
	}
	return m.styles.Card.Render(sb.String())
}
