// Package ui is the interactive storefront: catalog browsing with live
// filters, product details, login and signup, and the admin product
// dialog.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Primary     = lipgloss.Color("#101F38")
	Accent      = lipgloss.Color("#8BC34A")
	MutedColor  = lipgloss.Color("#7a8599")
	BorderColor = lipgloss.Color("#2a3850")
	Destructive = lipgloss.Color("#e53935")
	SuccessFg   = lipgloss.Color("#8BC34A")
	WarningFg   = lipgloss.Color("#FFC107")
	InfoFg      = lipgloss.Color("#2196F3")
)

// Styles holds the styled components used across screens.
type Styles struct {
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Content  lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Price    lipgloss.Style
	Badge    lipgloss.Style
	Card     lipgloss.Style
	Spinner  lipgloss.Style
}

// DefaultStyles returns the storefront styles. Setting NO_COLOR drops
// colours but keeps the layout.
func DefaultStyles() Styles {
	if os.Getenv("NO_COLOR") != "" {
		plain := lipgloss.NewStyle()
		return Styles{
			Header: plain.Bold(true), Footer: plain, Content: plain.Padding(1, 2),
			Title: plain.Bold(true).MarginBottom(1), Subtitle: plain, Body: plain,
			Muted: plain, Bold: plain.Bold(true), Label: plain, Focused: plain.Bold(true),
			Success: plain, Error: plain.Bold(true), Warning: plain, Info: plain,
			Price: plain, Badge: plain, Card: plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
			Spinner: plain,
		}
	}

	return Styles{
		Header: lipgloss.NewStyle().
			Background(Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 2),
		Content: lipgloss.NewStyle().
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true),
		Body:  lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().Foreground(MutedColor),
		Bold:  lipgloss.NewStyle().Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(14),
		Focused: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			Width(14),
		Success: lipgloss.NewStyle().Foreground(SuccessFg).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(WarningFg).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(InfoFg),
		Price:   lipgloss.NewStyle().Foreground(Accent).Bold(true),
		Badge: lipgloss.NewStyle().
			Background(Accent).
			Foreground(Primary).
			Padding(0, 1).
			Bold(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2),
		Spinner: lipgloss.NewStyle().Foreground(Accent),
	}
}
