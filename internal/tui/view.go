package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

const (
	labelWidth  = 14
	minBarWidth = 10
)

func (m Model) row(name string, cost, profit int) table.Row {
	p := message.NewPrinter(m.lang)
	return table.Row{name, p.Sprintf("%d", cost), p.Sprintf("%d", profit)}
}

// View implements tea.Model.
func (m Model) View() string {
	p := message.NewPrinter(m.lang)

	inputs := make([]string, 0, len(m.inputs))
	for _, ti := range m.inputs[:fieldCapacity] {
		inputs = append(inputs, ti.View())
	}

	left := strings.Join([]string{
		headingStyle.Render("Add Product"),
		strings.Join(inputs, "\n"),
		"",
		headingStyle.Render("Products"),
		m.products.View(),
		mutedStyle.Render(p.Sprintf("Total Products: %d", len(m.catalog.List()))),
		"",
		headingStyle.Render("Budget"),
		m.inputs[fieldCapacity].View(),
	}, "\n")

	right := strings.Join([]string{
		headingStyle.Render("Selected Items"),
		m.selected.View(),
		m.totals(),
		titleStyle.Render(m.lastRun),
		"",
		headingStyle.Render("Profit of Selected Items"),
		m.chart(),
	}, "\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(left), panelStyle.Render(right))

	var status string
	switch {
	case m.status == "":
	case m.statusErr:
		status = errorStyle.Render(m.status)
	default:
		status = infoStyle.Render(m.status)
	}

	return strings.Join([]string{
		titleStyle.Render("Bundle Optimizer"),
		body,
		status,
		m.help.View(m.keys),
	}, "\n")
}

func (m Model) totals() string {
	if m.report == nil {
		return "Total Cost: 0  Total Profit: 0"
	}
	return m.report.Totals(m.lang)
}

// chart draws one horizontal bar per selected item, scaled to the largest profit.
func (m Model) chart() string {
	if m.report == nil || m.report.Empty() {
		return mutedStyle.Render(msgNothingSelected)
	}

	p := message.NewPrinter(m.lang)
	width := m.width/2 - labelWidth - 16
	if width < minBarWidth {
		width = minBarWidth
	}

	lines := make([]string, 0, len(m.report.Selected))
	for _, bar := range m.report.Bars(width) {
		name := bar.Name
		if len([]rune(name)) > labelWidth {
			name = string([]rune(name)[:labelWidth-1]) + "…"
		}
		lines = append(lines, fmt.Sprintf("%-*s %s %s",
			labelWidth, name,
			barStyle.Render(strings.Repeat("█", bar.Length)),
			p.Sprintf("%d", bar.Profit),
		))
	}
	return strings.Join(lines, "\n")
}
