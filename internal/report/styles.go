package report

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// SummaryStyle frames the statistics block.
	SummaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	// LabelStyle for the statistic names.
	LabelStyle = lipgloss.NewStyle().Width(18)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)
)

// tableStyles renders a static table: bold header with a bottom border and no cursor highlight.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()

	return s
}

// FormatProfit formats a profit with a sign and a direction marker.
func FormatProfit(profit float64) string {
	switch {
	case profit > 0:
		return fmt.Sprintf("+%.4f ▲", profit)
	case profit < 0:
		return fmt.Sprintf("%.4f ▼", profit)
	default:
		return fmt.Sprintf("%.4f", profit)
	}
}
