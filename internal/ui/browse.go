package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/models"
)

type browseFocus int

const (
	focusTable browseFocus = iota
	focusSearch
	focusPrice
)

type browseView struct {
	state      *catalog.State
	table      table.Model
	search     textinput.Model
	price      textinput.Model
	focus      browseFocus
	categories []string
	category   int
}

func newBrowseView(categories []string) browseView {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Title", Width: 32},
			{Title: "Category", Width: 16},
			{Title: "Price", Width: 12},
			{Title: "Qty", Width: 5},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	search := textinput.New()
	search.Placeholder = "Search by title..."
	search.CharLimit = 64
	search.Width = 32

	price := textinput.New()
	price.Placeholder = "Price"
	price.CharLimit = 10
	price.Width = 10

	return browseView{
		state:      catalog.NewState(),
		table:      t,
		search:     search,
		price:      price,
		categories: append([]string{models.CategoryAll}, categories...),
	}
}

func (b *browseView) setSize(width, height int) {
	if h := height - 12; h > 3 {
		b.table.SetHeight(h)
	}
	if w := width - 40; w > 20 {
		cols := b.table.Columns()
		cols[0].Width = w
		b.table.SetColumns(cols)
	}
}

func (b *browseView) criteria() catalog.Criteria {
	return catalog.Criteria{
		Category: b.categories[b.category],
		Search:   b.search.Value(),
		Price:    catalog.ParsePrice(b.price.Value()),
	}
}

func (b *browseView) applyCriteria() {
	b.state.SetCriteria(b.criteria())
	b.syncTable()
}

func (b *browseView) syncTable() {
	visible := b.state.Visible()
	rows := make([]table.Row, 0, len(visible))
	for _, p := range visible {
		rows = append(rows, table.Row{
			p.Title,
			p.ProductType,
			models.FormatPrice(p.Price),
			strconv.Itoa(p.AvailableQuantity),
		})
	}
	b.table.SetRows(rows)
	if b.table.Cursor() >= len(rows) {
		b.table.SetCursor(max(0, len(rows)-1))
	}
}

func (b *browseView) selected() (models.Product, bool) {
	visible := b.state.Visible()
	i := b.table.Cursor()
	if i < 0 || i >= len(visible) {
		return models.Product{}, false
	}
	return visible[i], true
}

func (b *browseView) setFocus(f browseFocus) {
	b.focus = f
	b.search.Blur()
	b.price.Blur()
	switch f {
	case focusSearch:
		b.search.Focus()
	case focusPrice:
		b.price.Focus()
	}
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := &m.browse
	if b.focus != focusTable {
		switch msg.String() {
		case "esc", "enter":
			b.setFocus(focusTable)
			return m, nil
		}
		var cmd tea.Cmd
		if b.focus == focusSearch {
			b.search, cmd = b.search.Update(msg)
		} else {
			b.price, cmd = b.price.Update(msg)
		}
		b.applyCriteria()
		return m, cmd
	}

	admin := m.deps.Session.IsAdmin()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		b.setFocus(focusSearch)
		return m, nil
	case "p":
		b.setFocus(focusPrice)
		return m, nil
	case "tab":
		b.category = (b.category + 1) % len(b.categories)
		b.applyCriteria()
		return m, nil
	case "shift+tab":
		b.category = (b.category + len(b.categories) - 1) % len(b.categories)
		b.applyCriteria()
		return m, nil
	case "x":
		b.category = 0
		b.search.SetValue("")
		b.price.SetValue("")
		b.applyCriteria()
		return m, nil
	case "r":
		return m, m.fetch()
	case "enter":
		if p, ok := b.selected(); ok {
			return m.openDetail(p)
		}
		return m, nil
	case "l":
		if _, ok := m.deps.Session.Current(); ok {
			return m, m.logout()
		}
		m.screen = screenLogin
		m.login.focusField(0)
		return m, nil
	case "s":
		if _, ok := m.deps.Session.Current(); !ok {
			m.screen = screenRegister
			m.register.focusField(0)
		}
		return m, nil
	case "n":
		if admin {
			return m.openCreate()
		}
		return m, nil
	case "e":
		if p, ok := b.selected(); ok && admin {
			return m.openEdit(p)
		}
		return m, nil
	case "d":
		if p, ok := b.selected(); ok && admin {
			return m, m.remove(p.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return m, cmd
}

func (m Model) logout() tea.Cmd {
	ctx, sess := m.ctx, m.deps.Session
	return func() tea.Msg {
		return logoutMsg{err: sess.Logout(ctx)}
	}
}

func (m Model) viewBrowse() string {
	b := m.browse
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Products"))
	sb.WriteString("\n")

	var cats []string
	for i, c := range b.categories {
		if i == b.category {
			cats = append(cats, m.styles.Badge.Render(c))
		} else {
			cats = append(cats, m.styles.Muted.Render(c))
		}
	}
	sb.WriteString(strings.Join(cats, " ") + "\n")
	sb.WriteString(fmt.Sprintf("%s %s   %s %s\n\n",
		m.inputLabel("Search", b.focus == focusSearch), b.search.View(),
		m.inputLabel("Price", b.focus == focusPrice), b.price.View()))

	state := b.state
	switch {
	case state.Loading():
		sb.WriteString(m.spinner.View() + " Loading products...\n")
	case state.Status() == catalog.StatusFailed:
		sb.WriteString(m.styles.Error.Render("Could not load products: "+errorText(state.Err())) + " " +
			m.styles.Muted.Render("(r to retry)") + "\n")
	}

	if len(state.Visible()) == 0 {
		if state.Status() == catalog.StatusReady {
			if len(state.Baseline()) == 0 {
				sb.WriteString(m.styles.Muted.Render("The catalog is empty.") + "\n")
			} else {
				sb.WriteString(m.styles.Muted.Render("No products match the filters.") + "\n")
			}
		}
		return sb.String()
	}

	sb.WriteString(b.table.View() + "\n")
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d of %d products", len(state.Visible()), len(state.Baseline()))))
	return sb.String()
}

func (m Model) inputLabel(label string, focused bool) string {
	if focused {
		return m.styles.Bold.Foreground(Accent).Render(label + ":")
	}
	return m.styles.Muted.Render(label + ":")
}
