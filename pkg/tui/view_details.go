package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) viewDetails() string {
	idx := m.selected()
	if idx < 0 {
		return "No task selected"
	}
	t := m.data.Tasks[idx]
	c := m.data.Corrected[idx]

	header := detailsHeaderStyle.Render(fmt.Sprintf("Task %d : %s", t.ID, t.Name))

	factor := "FACTOR:      N/A"
	if c.HasFactor {
		factor = "FACTOR:      " + c.FactorLabel()
	}
	decision := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("ORIGINAL:    %s (%s, %.1fh)", t.Duration.Display, t.Duration.Unit, c.RawHours),
		special.Render(fmt.Sprintf("CORRECTED:   %s (%.1fh)", c.Display, c.Hours)),
		tagStyle(c.Source.String()).Render("SOURCE:      "+c.SourceLabel()),
		factor,
		fmt.Sprintf("RATIO:       %s", ratioBar(c.RawHours, c.Hours, 30)),
	)

	props := []string{
		fmt.Sprintf("%-18s : %s", "WBS", t.WBS),
		fmt.Sprintf("%-18s : %s", "Start", t.StartText()),
		fmt.Sprintf("%-18s : %s", "Finish", t.FinishText()),
		fmt.Sprintf("%-18s : %g", "Percent Complete", t.PercentComplete),
		fmt.Sprintf("%-18s : %s", "Predecessors", t.PredecessorText()),
		fmt.Sprintf("%-18s : %s", "Resource Names", t.ResourceNames),
		fmt.Sprintf("%-18s : %t", "Critical", t.Critical),
		fmt.Sprintf("%-18s : %t", "Milestone", t.Milestone),
		fmt.Sprintf("%-18s : %d", "Outline Level", t.OutlineLevel),
	}

	parts := []string{header, decision, "", dimStyle.Render(strings.Join(props, "\n"))}
	if fs := m.findings[t.ID]; len(fs) > 0 {
		parts = append(parts, "", highlight.Render("REVIEW:"))
		for _, f := range fs {
			line := "  " + f.RuleID
			if f.Note != "" {
				line += ": " + f.Note
			}
			parts = append(parts, warning.Render(line))
		}
	}
	return detailsBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// ratioBar draws raw and corrected hours on a shared scale.
func ratioBar(raw, corrected float64, width int) string {
	max := raw
	if corrected > max {
		max = corrected
	}
	if max == 0 {
		return "[NO DATA]"
	}
	bar := func(v float64) string {
		n := int(v / max * float64(width))
		return "[" + strings.Repeat("█", n) + strings.Repeat(" ", width-n) + "]"
	}
	return "raw " + bar(raw) + "  new " + bar(corrected)
}
