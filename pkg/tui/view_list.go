package tui

import (
	"fmt"
	"strings"
)

func (m Model) viewList() string {
	var s strings.Builder

	headerTxt := fmt.Sprintf("  %-6s | %-32s | %10s | %10s | %s", "ID", "NAME", "RAW", "CORRECTED", "SOURCE")
	s.WriteString(dimStyle.Render(headerTxt) + "\n")

	if m.tagFilter >= 0 {
		tc := m.data.Summary.Tags[m.tagFilter]
		s.WriteString(warning.Render(fmt.Sprintf("   [FILTER: %s] %d of %d", tc.Tag, len(m.visible), len(m.data.Tasks))) + "\n")
	} else {
		s.WriteString(dimStyle.Render("  "+strings.Repeat("─", 80)) + "\n")
	}

	if len(m.visible) == 0 {
		return s.String() + dimStyle.Render("   No tasks.") + "\n"
	}

	start, end := window(m.cursor, len(m.visible), m.height)
	for i := start; i < end; i++ {
		idx := m.visible[i]
		t := m.data.Tasks[idx]
		c := m.data.Corrected[idx]

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		flag := " "
		if len(m.findings[t.ID]) > 0 {
			flag = "!"
		}

		line := fmt.Sprintf("%-6d | %-32s | %10s | %10s | ",
			t.ID, truncate(t.Name, 32), truncate(t.Duration.Display, 10), truncate(c.Display, 10))
		source := tagStyle(c.Source.String()).Render(c.SourceLabel())

		if i == m.cursor {
			s.WriteString(listSelectedStyle.Render(cursor+flag+line) + source + "\n")
		} else {
			s.WriteString(listNormalStyle.Render(cursor+flag+line) + source + "\n")
		}
	}
	return s.String()
}

// window returns the slice of rows to draw so that cursor stays visible.
func window(cursor, total, height int) (int, int) {
	size := height - 10
	if size < 5 {
		size = 5
	}

	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > total {
		end = total
		start = end - size
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
