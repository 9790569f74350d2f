package tui

import (
	"fmt"
	"strings"

	"github.com/mppkit/mppconvert/pkg/schedule"
)

type outlineLine struct {
	index int
	text  string
}

// buildOutline flattens the task list into tree lines by outline level.
// A task is the last child when no later sibling appears before the
// outline climbs back above its level.
func buildOutline(tasks []schedule.Task) []outlineLine {
	lines := make([]outlineLine, 0, len(tasks))
	for i, t := range tasks {
		level := t.OutlineLevel
		if level < 1 {
			level = 1
		}

		var prefix strings.Builder
		for l := 2; l <= level; l++ {
			last := isLastAt(tasks, i, l)
			switch {
			case l == level && last:
				prefix.WriteString("└── ")
			case l == level:
				prefix.WriteString("├── ")
			case last:
				prefix.WriteString("    ")
			default:
				prefix.WriteString("│   ")
			}
		}

		marker := "[T]"
		switch {
		case t.Summary:
			marker = "[S]"
		case t.Milestone:
			marker = "[M]"
		}
		lines = append(lines, outlineLine{
			index: i,
			text:  fmt.Sprintf("%s%s %s", prefix.String(), marker, t.Name),
		})
	}
	return lines
}

// isLastAt reports whether the ancestor of task i at level l has no
// later sibling.
func isLastAt(tasks []schedule.Task, i, l int) bool {
	for j := i + 1; j < len(tasks); j++ {
		lv := tasks[j].OutlineLevel
		if lv < 1 {
			lv = 1
		}
		if lv < l {
			return true
		}
		if lv == l {
			return false
		}
	}
	return true
}

func (m Model) viewOutline() string {
	var s strings.Builder
	s.WriteString(dimStyle.Render(fmt.Sprintf("   %-60s | %s", "OUTLINE", "CORRECTED")) + "\n")
	s.WriteString(dimStyle.Render("   "+strings.Repeat("─", 60)) + "\n")

	if len(m.outline) == 0 {
		return s.String() + dimStyle.Render("   No tasks.") + "\n"
	}

	start, end := window(m.outlineCursor, len(m.outline), m.height)
	for i := start; i < end; i++ {
		line := m.outline[i]
		c := m.data.Corrected[line.index]
		text := fmt.Sprintf(" %-60s | %s", truncate(line.text, 60), c.Display)
		if i == m.outlineCursor {
			s.WriteString(listSelectedStyle.Render(">"+text) + "\n")
		} else {
			s.WriteString(listNormalStyle.Render(" "+text) + "\n")
		}
	}
	return s.String()
}
