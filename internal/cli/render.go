// Package cli provides formatting and rendering utilities for terminal
// output.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/Jayasuryanarayana/BudgetBox/internal/status"
)

// Theme colors
var (
	ColorText    = lipgloss.Color("#FFFCF0")
	ColorTextDim = lipgloss.Color("#575653")
	ColorGreen   = lipgloss.Color("#879A39")
	ColorOrange  = lipgloss.Color("#DA702C")
	ColorRed     = lipgloss.Color("#D14D41")
	ColorBlue    = lipgloss.Color("#4385BE")
	ColorYellow  = lipgloss.Color("#D0A215")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	negativeStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// statusColor maps each sync status label to its indicator color.
func statusColor(st status.Status) lipgloss.Color {
	switch st {
	case status.Synced:
		return ColorGreen
	case status.SyncPending:
		return ColorYellow
	case status.LocalOnly:
		return ColorBlue
	default:
		return ColorOrange
	}
}

// RenderStatus renders the status indicator line: a colored dot, the
// label, and its description.
func RenderStatus(st status.Status) string {
	dot := lipgloss.NewStyle().Foreground(statusColor(st)).Render("●")
	label := lipgloss.NewStyle().Bold(true).Foreground(statusColor(st)).Render(st.String())
	desc := labelStyle.Render(st.Description())
	return fmt.Sprintf("%s %s  %s", dot, label, desc)
}

// FormatAmount renders a currency amount with two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// RenderSummary renders the budget overview: income, each expense
// category, totals, and the remaining balance.
func RenderSummary(rec budget.Record, st status.Status) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Monthly Budget"))
	b.WriteString("\n\n")

	writeRow(&b, "Income", FormatAmount(rec.Income), valueStyle)
	b.WriteString("\n")

	for _, c := range budget.Categories() {
		writeRow(&b, titleCase(string(c)), FormatAmount(rec.Expenses.Get(c)), valueStyle)
	}
	b.WriteString("\n")

	writeRow(&b, "Total expenses", FormatAmount(rec.TotalExpenses()), valueStyle)

	remaining := rec.Remaining()
	style := valueStyle
	if remaining < 0 {
		style = negativeStyle
	}
	writeRow(&b, "Remaining", FormatAmount(remaining), style)

	b.WriteString("\n")
	b.WriteString(RenderStatus(st))
	b.WriteString("\n")

	return b.String()
}

func writeRow(b *strings.Builder, label, value string, style lipgloss.Style) {
	b.WriteString(fmt.Sprintf("  %s %s\n",
		labelStyle.Render(fmt.Sprintf("%-16s", label)),
		style.Render(value)))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
