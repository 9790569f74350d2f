// Package report lays converted schedules out as sheets and writes them
// as xlsx, csv or json, plus the console summaries printed after a run.
package report

import (
	"fmt"

	"github.com/mppkit/mppconvert/pkg/aggregate"
	"github.com/mppkit/mppconvert/pkg/correction"
	"github.com/mppkit/mppconvert/pkg/policy"
	"github.com/mppkit/mppconvert/pkg/schedule"
)

// Sheet names.
const (
	SheetTasksCorrected = "Tasks_Corrected"
	SheetSummary        = "Correction_Summary"
	SheetTasks          = "Tasks"
	SheetResources      = "Resources"
	SheetReview         = "Review"
)

// Sheet is a header plus rows of typed cells (string, int, float64, bool).
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Document is everything one conversion exports. Optional sheets are nil
// when they would be empty.
type Document struct {
	Tasks     Sheet
	Summary   *Sheet
	Resources *Sheet
	Review    *Sheet
}

// Sheets lists the document's sheets in workbook order.
func (d Document) Sheets() []Sheet {
	out := []Sheet{d.Tasks}
	for _, s := range []*Sheet{d.Summary, d.Resources, d.Review} {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

var correctedHeader = []string{
	"ID", "WBS", "Name",
	"Duration_Original", "Duration_MPXJ_Hours",
	"Duration_Corrected", "Duration_Corrected_Hours", "Duration_Source",
	"Start", "Finish", "Percent Complete", "Predecessors", "Resource Names",
	"Cost", "Work", "Critical", "Milestone", "Summary", "Notes", "Outline Level",
}

var plainHeader = []string{
	"ID", "WBS", "Name", "Duration",
	"Start", "Finish", "Percent Complete", "Predecessors", "Resource Names",
	"Cost", "Work", "Critical", "Milestone", "Summary", "Notes", "Outline Level",
}

var resourceHeader = []string{"ID", "Name", "Type", "Cost", "Standard Rate", "Max Units"}

// NewCorrectedDocument builds the corrected-mode export. tasks and
// corrected are parallel slices.
func NewCorrectedDocument(p *schedule.Project, corrected []correction.CorrectedDurationRecord, s aggregate.Summary, findings []policy.Finding) (Document, error) {
	if len(p.Tasks) != len(corrected) {
		return Document{}, fmt.Errorf("report: %d tasks but %d corrected durations", len(p.Tasks), len(corrected))
	}

	tasks := Sheet{Name: SheetTasksCorrected, Header: correctedHeader}
	for i, t := range p.Tasks {
		c := corrected[i]
		tasks.Rows = append(tasks.Rows, []any{
			t.ID, t.WBS, t.Name,
			t.Duration.Display, c.RawHours,
			c.Display, c.Hours, c.SourceLabel(),
			t.StartText(), t.FinishText(), t.PercentComplete, t.PredecessorText(), t.ResourceNames,
			t.Cost, t.Work, t.Critical, t.Milestone, t.Summary, t.Notes, t.OutlineLevel,
		})
	}

	summary := Sheet{Name: SheetSummary, Header: aggregate.Header}
	for _, r := range s.Rows() {
		summary.Rows = append(summary.Rows, []any{r.Metric, r.Count, r.Percentage})
	}

	doc := Document{Tasks: tasks, Summary: &summary, Resources: resourceSheet(p.Resources)}
	if len(findings) > 0 {
		review := Sheet{Name: SheetReview, Header: policy.Header}
		for _, f := range findings {
			review.Rows = append(review.Rows, []any{f.TaskID, f.Name, f.RuleID, f.Note, f.Source})
		}
		doc.Review = &review
	}
	return doc, nil
}

// NewPlainDocument builds the plain-mode export with the reader's
// durations as they are.
func NewPlainDocument(p *schedule.Project) Document {
	tasks := Sheet{Name: SheetTasks, Header: plainHeader}
	for _, t := range p.Tasks {
		tasks.Rows = append(tasks.Rows, []any{
			t.ID, t.WBS, t.Name, t.Duration.Display,
			t.StartText(), t.FinishText(), t.PercentComplete, t.PredecessorText(), t.ResourceNames,
			t.Cost, t.Work, t.Critical, t.Milestone, t.Summary, t.Notes, t.OutlineLevel,
		})
	}
	return Document{Tasks: tasks, Resources: resourceSheet(p.Resources)}
}

func resourceSheet(resources []schedule.Resource) *Sheet {
	if len(resources) == 0 {
		return nil
	}
	s := Sheet{Name: SheetResources, Header: resourceHeader}
	for _, r := range resources {
		s.Rows = append(s.Rows, []any{r.ID, r.Name, r.Type, r.Cost, r.StandardRate, r.MaxUnits})
	}
	return &s
}
