package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleBody     = lipgloss.NewStyle()
	styleMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	styleCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	styleWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

// table is a minimal plain-text table renderer, adapted from the
// codeNERD CLI's ui.SimpleTable for a non-interactive, non-themed
// command-line report instead of a Bubble Tea pane.
type table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func newTable(title string, headers ...string) *table {
	return &table{Title: title, Headers: headers}
}

func (t *table) addRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

func (t *table) render() string {
	if len(t.Rows) == 0 {
		return styleMuted.Render("(nothing to show)") + "\n"
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styleTitle.Render(t.Title))
		sb.WriteString("\n")
	}

	for i, h := range t.Headers {
		sb.WriteString(styleHeader.Width(widths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(styleMuted.Render("|"))
		}
	}
	sb.WriteString("\n")

	total := len(t.Headers) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styleMuted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(styleBody.Width(widths[i]).Render(cell))
				if i < len(row)-1 {
					sb.WriteString(styleMuted.Render("|"))
				}
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
