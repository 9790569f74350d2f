package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mppkit/mppconvert/pkg/aggregate"
	"github.com/mppkit/mppconvert/pkg/correction"
	"github.com/mppkit/mppconvert/pkg/schedule"
)

var (
	colorNeonGreen  = lipgloss.Color("#00FF99")
	colorNeonPurple = lipgloss.Color("#874BFD")
	colorTextSub    = lipgloss.Color("#64748B")
	colorWarning    = lipgloss.Color("#F59E0B")
)

// Printer writes console summaries. Styles degrade to plain text when w
// is not a terminal.
type Printer struct {
	w io.Writer

	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	subtle  lipgloss.Style
	warning lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		title:   r.NewStyle().Foreground(colorNeonPurple).Bold(true),
		label:   r.NewStyle().Foreground(colorTextSub),
		value:   r.NewStyle().Foreground(colorNeonGreen).Bold(true),
		subtle:  r.NewStyle().Foreground(colorTextSub),
		warning: r.NewStyle().Foreground(colorWarning),
	}
}

func (p *Printer) heading(s string) {
	fmt.Fprintf(p.w, "\n%s\n", p.title.Render(s))
}

// Processed reports the number of tasks read.
func (p *Printer) Processed(n int) {
	fmt.Fprintf(p.w, "\n%s Processed %s tasks\n", p.value.Render("✓"), p.value.Render(fmt.Sprint(n)))
}

// Summary prints the per-tag breakdown and hour totals.
func (p *Printer) Summary(s aggregate.Summary) {
	p.heading("Correction Summary:")
	for _, tc := range s.Tags {
		fmt.Fprintf(p.w, "  %s %d tasks (%.1f%%)\n", p.label.Render(tc.Tag.String()+":"), tc.Count, tc.Percent)
	}
	fmt.Fprintf(p.w, "  %s %.0f → %.0f (%s)\n", p.label.Render("Hours:"), s.RawHours, s.CorrectedHours, s.FactorText())
}

// Examples lists up to n tasks whose duration was replaced or rescaled.
func (p *Printer) Examples(tasks []schedule.Task, corrected []correction.CorrectedDurationRecord, n int) {
	if n <= 0 {
		return
	}
	var lines []string
	for i, c := range corrected {
		if len(lines) == n {
			break
		}
		if c.Source.KeepsRaw() || i >= len(tasks) {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-40s | %8s → %10s (%s)",
			truncate(tasks[i].Name, 40), tasks[i].Duration.Display, c.Display, c.SourceLabel()))
	}
	if len(lines) == 0 {
		return
	}
	p.heading("Examples of corrections:")
	for _, l := range lines {
		fmt.Fprintln(p.w, l)
	}
}

// Properties prints the project header fields that are set.
func (p *Printer) Properties(props schedule.Properties) {
	p.heading("=== PROJECT PROPERTIES ===")
	p.field("Project Title", props.Title)
	p.field("Project Manager", props.Manager)
	if !props.Start.IsZero() {
		p.field("Start Date", props.Start.Format(schedule.DateLayout))
	}
	if !props.Finish.IsZero() {
		p.field("Finish Date", props.Finish.Format(schedule.DateLayout))
	}
}

func (p *Printer) field(name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render(name+":"), value)
}

// ProjectSummary prints task counts and average completion.
func (p *Printer) ProjectSummary(tasks []schedule.Task) {
	var milestones, summaries, critical int
	var complete float64
	for _, t := range tasks {
		if t.Milestone {
			milestones++
		}
		if t.Summary {
			summaries++
		}
		if t.Critical {
			critical++
		}
		complete += t.PercentComplete
	}
	avg := 0.0
	if len(tasks) > 0 {
		avg = complete / float64(len(tasks))
	}

	p.heading("=== PROJECT SUMMARY ===")
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("Total Tasks:"), len(tasks))
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("Milestones:"), milestones)
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("Summary Tasks:"), summaries)
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("Critical Tasks:"), critical)
	fmt.Fprintf(p.w, "%s %.1f%%\n", p.label.Render("Average Completion:"), avg)
}

// Hierarchy prints the first limit tasks indented by outline level.
func (p *Printer) Hierarchy(tasks []schedule.Task, limit int) {
	p.heading("=== TASK HIERARCHY ===")
	if limit > len(tasks) {
		limit = len(tasks)
	}
	fmt.Fprintln(p.w, p.subtle.Render(fmt.Sprintf("%-10s %-50s %10s %8s", "WBS", "Name", "Duration", "Complete")))
	for _, t := range tasks[:limit] {
		name := strings.Repeat("  ", max(t.OutlineLevel, 0)) + t.Name
		fmt.Fprintf(p.w, "%-10s %-50s %10s %7.0f%%\n", t.WBS, truncate(name, 50), t.Duration.Display, t.PercentComplete)
	}
	if len(tasks) > limit {
		fmt.Fprintln(p.w, p.subtle.Render(fmt.Sprintf("... %d more", len(tasks)-limit)))
	}
}

// Warn prints a highlighted warning line.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.warning.Render("!"), msg)
}

// Exported confirms where an artifact was written.
func (p *Printer) Exported(what, path string) {
	fmt.Fprintf(p.w, "\n%s %s: %s\n", p.value.Render("✓"), what, path)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
