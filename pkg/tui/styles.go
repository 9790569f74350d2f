package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent   = lipgloss.Color("#874BFD")
	colorGood     = lipgloss.Color("#00FF99")
	colorTextMain = lipgloss.Color("#E2E8F0")
	colorTextSub  = lipgloss.Color("#64748B")
	colorDanger   = lipgloss.Color("#FF0055")
	colorWarning  = lipgloss.Color("#F59E0B")

	dimStyle  = lipgloss.NewStyle().Foreground(colorTextSub)
	highlight = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	special   = lipgloss.NewStyle().Foreground(colorGood).Bold(true)
	danger    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	warning   = lipgloss.NewStyle().Foreground(colorWarning)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)

	listSelectedStyle = lipgloss.NewStyle().
				Foreground(colorTextMain).
				Background(lipgloss.Color("#331832")).
				Bold(true)

	listNormalStyle = lipgloss.NewStyle().Foreground(colorTextSub)

	detailsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorGood).
			Padding(1, 2).
			MarginTop(1)

	detailsHeaderStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true).
				Underline(true).
				MarginBottom(1)
)

// tagStyle colors a decision: kept raw values are calm, reference
// overrides warn, suspect factors stand out.
func tagStyle(tag string) lipgloss.Style {
	switch tag {
	case "RawAccepted", "RawValidatedByReference":
		return listNormalStyle
	case "ReferenceAcceptedSuspectFactor":
		return danger
	default:
		return warning
	}
}
