package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matthieukhl/storefront/internal/models"
)

// SimpleTable renders static rows, used for non-interactive output.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// View renders the table. An empty table renders as "".
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], lipgloss.Width(cell))
			}
		}
	}
	// room for the cell padding
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sep := styles.Muted.Render("|")

	for i, h := range t.Headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")

	total := len(t.Headers) - 1
	for _, w := range colWidths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", total)) + "\n")

	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			sb.WriteString(rowStyle.Width(colWidths[i]).Render(cell))
			if i < len(row)-1 && i < len(colWidths)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ProductTable lays products out the way the catalog screen lists them.
func ProductTable(title string, products []models.Product, withIDs bool) *SimpleTable {
	headers := []string{"Title", "Category", "Price", "Qty"}
	if withIDs {
		headers = append([]string{"ID"}, headers...)
	}
	t := NewSimpleTable(title, headers)
	for _, p := range products {
		row := []string{p.Title, p.ProductType, models.FormatPrice(p.Price), strconv.Itoa(p.AvailableQuantity)}
		if withIDs {
			row = append([]string{p.ID}, row...)
		}
		t.AddRow(row...)
	}
	return t
}
