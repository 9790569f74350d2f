package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/mppkit/mppconvert/pkg/aggregate"
	"github.com/mppkit/mppconvert/pkg/correction"
	"github.com/mppkit/mppconvert/pkg/schedule"
)

func fixtureProject() *schedule.Project {
	dur := func(id int, display string) correction.RawDurationRecord {
		return correction.RawDurationRecord{TaskID: id, Display: display, Unit: correction.UnitElapsedHours}
	}
	pred := 1
	return &schedule.Project{
		Properties: schedule.Properties{
			Title:   "Plant Upgrade",
			Manager: "Ops",
			Start:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		Tasks: []schedule.Task{
			{ID: 0, WBS: "0", Name: "Plant Upgrade", Summary: true, PercentComplete: 50},
			{ID: 1, WBS: "1", Name: "Survey", OutlineLevel: 1, Duration: dur(1, "40.0eh"), PercentComplete: 100, Critical: true,
				Start: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), Finish: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)},
			{ID: 2, WBS: "1.1", Name: "Install pumps", OutlineLevel: 2, Duration: dur(2, "10.0eh"), PercentComplete: 50,
				Predecessors: []schedule.Relation{{PredecessorID: &pred, Type: schedule.StartToStart, Lag: 2, LagUnit: "d"}}},
			{ID: 3, WBS: "1.2", Name: "Commission", OutlineLevel: 2, Duration: dur(3, "768.0eh"), Milestone: true, Critical: true},
			{ID: 4, WBS: "2", Name: "Decommission the temporary construction power supply", OutlineLevel: 1, Duration: dur(4, "10.0eh")},
		},
		Resources: []schedule.Resource{{ID: 1, Name: "Crew", Type: "WORK", Cost: 300, StandardRate: "40.0/h", MaxUnits: 100}},
	}
}

func fixtureCorrected() []correction.CorrectedDurationRecord {
	return []correction.CorrectedDurationRecord{
		{TaskID: 0, Source: correction.RawAccepted},
		{TaskID: 1, RawHours: 40, Hours: 960, Display: "960.0h", Source: correction.RawAcceptedScaled24x},
		{TaskID: 2, RawHours: 10, Hours: 240, Display: "240.0h", Source: correction.ReferenceAcceptedDayUnitFix, Factor: 24, HasFactor: true},
		{TaskID: 3, RawHours: 768, Hours: 768, Display: "768.0eh", Source: correction.RawValidatedByReference, Factor: 750.0 / 768.0, HasFactor: true},
		{TaskID: 4, RawHours: 10, Hours: 34, Display: "34.0h", Source: correction.ReferenceAcceptedSuspectFactor, Factor: 3.4, HasFactor: true},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestPrinter_Summary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Processed(5)
	p.Summary(aggregate.Summarize(fixtureCorrected()))

	newGoldie(t).Assert(t, "summary", buf.Bytes())
}

func TestPrinter_Examples(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Examples(fixtureProject().Tasks, fixtureCorrected(), 10)

	newGoldie(t).Assert(t, "examples", buf.Bytes())
}

func TestPrinter_ExamplesLimit(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Examples(fixtureProject().Tasks, fixtureCorrected(), 1)

	newGoldie(t).Assert(t, "examples_limit", buf.Bytes())
}

func TestPrinter_Overview(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	project := fixtureProject()

	p.Properties(project.Properties)
	p.ProjectSummary(project.Tasks)
	p.Hierarchy(project.Tasks, 3)

	newGoldie(t).Assert(t, "overview", buf.Bytes())
}
