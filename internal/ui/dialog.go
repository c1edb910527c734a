package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/productform"
)

const (
	dlgTitle = iota
	dlgDescription
	dlgPrice
	dlgQuantity
	dlgType
	dlgImage
)

var dialogLabels = []string{"Title", "Description", "Price", "Quantity", "Type", "Image URL"}

// fieldOf maps dialog rows to validation fields.
var fieldOf = []string{
	productform.FieldTitle,
	productform.FieldDescription,
	productform.FieldPrice,
	productform.FieldAvailableQuantity,
	productform.FieldProductType,
	productform.FieldImage,
}

type dialogView struct {
	state  *productform.Dialog
	inputs []textinput.Model
	focus  int
}

func newDialogView() dialogView {
	inputs := make([]textinput.Model, len(dialogLabels))
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 256
		in.Width = 40
		inputs[i] = in
	}
	inputs[dlgPrice].Placeholder = "19.99"
	inputs[dlgQuantity].Placeholder = "0"
	inputs[dlgImage].Placeholder = "https://..."
	return dialogView{state: &productform.Dialog{}, inputs: inputs}
}

func (d *dialogView) load(in productform.Input) {
	values := []string{in.Title, in.Description, in.Price, in.AvailableQuantity, in.ProductType, in.Image}
	for i, v := range values {
		d.inputs[i].SetValue(v)
	}
	d.focusField(0)
}

func (d *dialogView) input() productform.Input {
	return productform.Input{
		ID:                d.state.Form().ID,
		Title:             d.inputs[dlgTitle].Value(),
		Description:       d.inputs[dlgDescription].Value(),
		Price:             d.inputs[dlgPrice].Value(),
		AvailableQuantity: d.inputs[dlgQuantity].Value(),
		ProductType:       d.inputs[dlgType].Value(),
		Image:             d.inputs[dlgImage].Value(),
	}
}

func (d *dialogView) focusField(i int) {
	n := len(d.inputs)
	d.focus = ((i % n) + n) % n
	for j := range d.inputs {
		if j == d.focus {
			d.inputs[j].Focus()
		} else {
			d.inputs[j].Blur()
		}
	}
}

func (d *dialogView) close() {
	d.state.Close()
	for i := range d.inputs {
		d.inputs[i].SetValue("")
	}
}

func (m Model) openCreate() (tea.Model, tea.Cmd) {
	m.dialog.state.OpenCreate()
	m.dialog.load(productform.InputFromForm(m.dialog.state.Form()))
	m.dialog.inputs[dlgQuantity].SetValue("")
	m.screen = screenDialog
	return m, nil
}

func (m Model) openEdit(p models.Product) (tea.Model, tea.Cmd) {
	m.dialog.state.OpenEdit(p)
	m.dialog.load(productform.InputFromForm(m.dialog.state.Form()))
	m.screen = screenDialog
	return m, nil
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := &m.dialog
	if d.state.Phase() == productform.PhaseSubmitting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		d.close()
		m.screen = screenBrowse
		return m, nil
	case "tab", "down":
		d.focusField(d.focus + 1)
		return m, nil
	case "shift+tab", "up":
		d.focusField(d.focus - 1)
		return m, nil
	case "ctrl+t":
		categories := m.deps.Products.Categories()
		if len(categories) > 0 {
			next := (slices.Index(categories, strings.TrimSpace(d.inputs[dlgType].Value())) + 1) % len(categories)
			d.inputs[dlgType].SetValue(categories[next])
		}
		return m, nil
	case "ctrl+s":
		return m.submitDialog()
	case "enter":
		if d.focus < len(d.inputs)-1 {
			d.focusField(d.focus + 1)
			return m, nil
		}
		return m.submitDialog()
	}

	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return m, cmd
}

func (m Model) submitDialog() (tea.Model, tea.Cmd) {
	d := &m.dialog
	form, parseErrs := d.input().Parse()
	d.state.SetForm(form)
	if len(parseErrs) > 0 {
		d.state.Fail(parseErrs)
		return m, nil
	}

	form, err := d.state.Begin(m.deps.Products.Categories())
	if err != nil {
		return m, nil
	}

	ctx, products, id := m.ctx, m.deps.Products, d.state.Submission()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		saved, err := products.Save(ctx, form)
		return savedMsg{submission: id, product: saved, err: err}
	})
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if !m.dialog.state.FinishSubmission(msg.submission, msg.err) {
		// an abandoned submit; still pick up the change
		if msg.err == nil {
			return m, m.fetch()
		}
		return m, nil
	}
	if msg.err != nil {
		m.setStatus(statusError, "Save failed: %s", errorText(msg.err))
		return m, nil
	}

	m.dialog.close()
	m.screen = screenBrowse
	m.setStatus(statusSuccess, "Saved %s", msg.product.Title)
	return m, m.fetch()
}

func (m Model) remove(id string) tea.Cmd {
	ctx, products := m.ctx, m.deps.Products
	return func() tea.Msg {
		return deletedMsg{id: id, err: products.Remove(ctx, id)}
	}
}

func (m Model) viewDialog() string {
	d := m.dialog
	var sb strings.Builder

	title := "New product"
	if d.state.IsEdit() {
		title = "Edit product"
	}
	sb.WriteString(m.styles.Title.Render(title) + "\n")

	fieldErrs := d.state.FieldErrors()
	for i, in := range d.inputs {
		line := m.fieldLabel(dialogLabels[i], d.focus == i) + in.View()
		if msg, ok := fieldErrs[fieldOf[i]]; ok {
			line += " " + m.styles.Error.Render(msg)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(m.styles.Muted.Render("Types: "+strings.Join(m.deps.Products.Categories(), ", ")) + "\n\n")

	switch {
	case d.state.Phase() == productform.PhaseSubmitting:
		sb.WriteString(m.spinner.View() + " Saving...\n")
	case d.state.Err() != nil && len(fieldErrs) == 0:
		sb.WriteString(m.styles.Error.Render(errorText(d.state.Err())) + "\n")
	}
	return sb.String()
}
