package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mppkit/mppconvert/pkg/config"
	"github.com/mppkit/mppconvert/pkg/correction"
	"github.com/mppkit/mppconvert/pkg/report"
	"github.com/mppkit/mppconvert/pkg/schedule"
)

type fakeSource struct {
	dump  *schedule.Dump
	trace string
	err   error
	panic bool
	reads []string
}

func (f *fakeSource) Read(_ context.Context, path string) (*schedule.Dump, string, error) {
	f.reads = append(f.reads, path)
	if f.panic {
		panic("reader exploded")
	}
	return f.dump, f.trace, f.err
}

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }
func bptr(v bool) *bool      { return &v }

func sampleDump() *schedule.Dump {
	return &schedule.Dump{
		Properties: &schedule.DumpProperties{ProjectTitle: "Plant Upgrade"},
		Tasks: []*schedule.DumpTask{
			{ID: iptr(1), Name: "Survey", Duration: &schedule.DumpDuration{Value: f64(40), Units: "eh", Text: "40.0eh"},
				Start: "2024-03-01T08:00", Finish: "2024-03-11T08:00", PercentComplete: f64(100), Critical: bptr(true)},
			{ID: iptr(2), Name: "Commission", Duration: &schedule.DumpDuration{Value: f64(768), Units: "eh", Text: "768.0eh"},
				Start: "2024-03-11T08:00", Finish: "2024-04-11T08:00"},
			{ID: iptr(3), Name: "Install", Duration: &schedule.DumpDuration{Value: f64(10), Units: "eh", Text: "10.0eh"},
				Start: "2024-04-11T08:00", Finish: "2024-04-21T08:00",
				Predecessors: []*schedule.DumpRelation{{PredecessorID: iptr(2), Type: "FS"}}},
		},
		Resources: []*schedule.DumpResource{{ID: iptr(1), Name: "Crew", Type: "WORK", Cost: f64(300)}},
	}
}

// newTestEngine runs in a temp working directory so default outputs land
// there.
func newTestEngine(t *testing.T, src Source, mutate func(*config.Config)) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	input := filepath.Join(dir, "plan.mpp")
	require.NoError(t, os.WriteFile(input, []byte("binary schedule"), 0o644))

	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(WithConfig(cfg), WithSource(src)), input
}

func TestConvert_NoReference(t *testing.T) {
	src := &fakeSource{dump: sampleDump()}
	e, input := newTestEngine(t, src, nil)

	res, err := e.Convert(context.Background(), Job{Input: input})
	require.NoError(t, err)

	assert.NotEmpty(t, res.JobID)
	assert.Equal(t, []string{input}, src.reads)
	assert.Equal(t, []string{"corrected_project.xlsx"}, res.Outputs)
	assert.Nil(t, res.Reference)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Corrected, 3)
	assert.Equal(t, correction.RawAcceptedScaled24x, res.Corrected[0].Source)
	assert.InDelta(t, 960, res.Corrected[0].Hours, 1e-9)
	assert.Equal(t, correction.RawAccepted, res.Corrected[1].Source)

	f, err := excelize.OpenFile("corrected_project.xlsx")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{report.SheetTasksCorrected, report.SheetSummary, report.SheetResources}, f.GetSheetList())
}

func TestConvert_WithReference(t *testing.T) {
	src := &fakeSource{dump: sampleDump()}
	e, input := newTestEngine(t, src, nil)

	ref := filepath.Join(filepath.Dir(input), "reference.csv")
	require.NoError(t, os.WriteFile(ref, []byte("ID,Nombre,Duración(horas)\n2,Commission,750\n3,Install,240\n"), 0o644))

	res, err := e.Convert(context.Background(), Job{Input: input, Reference: ref, Format: report.FormatCSV, Output: "out/plan.csv"})
	require.NoError(t, err)

	require.NotNil(t, res.Reference)
	assert.Equal(t, 2, res.Reference.Len())
	assert.Equal(t, correction.RawAcceptedScaled24x, res.Corrected[0].Source)
	assert.Equal(t, correction.RawValidatedByReference, res.Corrected[1].Source)
	assert.Equal(t, "768.0eh", res.Corrected[1].Display)
	assert.Equal(t, correction.ReferenceAcceptedDayUnitFix, res.Corrected[2].Source)
	assert.InDelta(t, 240, res.Corrected[2].Hours, 1e-9)

	assert.Equal(t, []string{"out/plan.csv", "out/plan_summary.csv", "out/plan_resources.csv"}, res.Outputs)
	summary, err := os.ReadFile("out/plan_summary.csv")
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Total tasks,3,100%")
}

func TestConvert_ReferenceSkippedRowsLogged(t *testing.T) {
	src := &fakeSource{dump: sampleDump()}
	e, input := newTestEngine(t, src, nil)
	var logs bytes.Buffer
	e.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	ref := filepath.Join(filepath.Dir(input), "reference.csv")
	require.NoError(t, os.WriteFile(ref, []byte("ID,Hours\n2,\"1,750.0\"\n3,tbd\n"), 0o644))

	res, err := e.Convert(context.Background(), Job{Input: input, Reference: ref, Format: report.FormatCSV})
	require.NoError(t, err)
	require.NotNil(t, res.Reference)
	assert.Equal(t, 1, res.Reference.Len())

	rec, ok := res.Reference.Lookup(2)
	require.True(t, ok)
	assert.InDelta(t, 1750, rec.Hours, 1e-9)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "rows=[3]")
}

func TestConvert_ReferenceUnavailableIsWarning(t *testing.T) {
	src := &fakeSource{dump: sampleDump()}
	e, input := newTestEngine(t, src, func(c *config.Config) { c.Reference.Path = "missing.xlsx" })

	res, err := e.Convert(context.Background(), Job{Input: input})
	require.NoError(t, err)
	assert.Nil(t, res.Reference)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "reference table unavailable")
	assert.Equal(t, correction.RawAcceptedScaled24x, res.Corrected[0].Source)
}

func TestConvert_Plain(t *testing.T) {
	src := &fakeSource{dump: sampleDump()}
	e, input := newTestEngine(t, src, nil)

	res, err := e.Convert(context.Background(), Job{Input: input, Plain: true, Format: report.FormatJSON})
	require.NoError(t, err)
	assert.True(t, res.Plain())

	want := strings.TrimSuffix(input, ".mpp") + ".json"
	assert.Equal(t, []string{want}, res.Outputs)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Duration": "40.0eh"`)
}

func TestConvert_Review(t *testing.T) {
	src := &fakeSource{dump: sampleDump()}
	e, input := newTestEngine(t, src, nil)

	rules := filepath.Join(filepath.Dir(input), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(`
rules:
  - id: scaled_critical
    condition: "source == 'RawAcceptedScaled24x' && critical"
    note: confirm elapsed hours
`), 0o644))

	res, err := e.Convert(context.Background(), Job{Input: input, RulesFile: rules})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, 1, res.Findings[0].TaskID)

	f, err := excelize.OpenFile("corrected_project.xlsx")
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), report.SheetReview)

	require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - id: broken\n    condition: \"hours >\"\n"), 0o644))
	_, err = e.Convert(context.Background(), Job{Input: input, RulesFile: rules})
	assert.Error(t, err)
}

func TestConvert_Failures(t *testing.T) {
	t.Run("input not found", func(t *testing.T) {
		e, _ := newTestEngine(t, &fakeSource{dump: sampleDump()}, nil)
		_, err := e.Convert(context.Background(), Job{Input: "nope.mpp"})
		require.ErrorIs(t, err, ErrInputNotFound)

		var f *Failure
		require.ErrorAs(t, err, &f)
		assert.Equal(t, InputNotFound, f.Kind)
		assert.Equal(t, ExitFailure, ExitCode(err))
	})

	t.Run("empty result", func(t *testing.T) {
		e, input := newTestEngine(t, &fakeSource{dump: &schedule.Dump{Tasks: []*schedule.DumpTask{nil}}}, nil)
		_, err := e.Convert(context.Background(), Job{Input: input})
		assert.ErrorIs(t, err, ErrEmptyResult)
		_, statErr := os.Stat("corrected_project.xlsx")
		assert.True(t, os.IsNotExist(statErr), "nothing exported")
	})

	t.Run("source read keeps trace", func(t *testing.T) {
		src := &fakeSource{err: errors.New("exit status 1"), trace: "MPXJException: bad file"}
		e, input := newTestEngine(t, src, nil)
		_, err := e.Convert(context.Background(), Job{Input: input})

		var f *Failure
		require.ErrorAs(t, err, &f)
		assert.Equal(t, SourceRead, f.Kind)
		assert.Equal(t, "MPXJException: bad file", TraceOf(err))
	})

	t.Run("export", func(t *testing.T) {
		e, input := newTestEngine(t, &fakeSource{dump: sampleDump()}, nil)
		blocker := filepath.Join(filepath.Dir(input), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))

		_, err := e.Convert(context.Background(), Job{Input: input, Output: filepath.Join(blocker, "out.xlsx")})
		var f *Failure
		require.ErrorAs(t, err, &f)
		assert.Equal(t, Export, f.Kind)
	})

	t.Run("panic", func(t *testing.T) {
		e, input := newTestEngine(t, &fakeSource{panic: true}, nil)
		_, err := e.Convert(context.Background(), Job{Input: input})
		assert.ErrorContains(t, err, "reader exploded")
	})
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "corrected_project.xlsx", DefaultOutput("plans/a.mpp", false, report.FormatXLSX))
	assert.Equal(t, "corrected_project.csv", DefaultOutput("plans/a.mpp", false, report.FormatCSV))
	assert.Equal(t, "plans/a.xlsx", DefaultOutput("plans/a.mpp", true, report.FormatXLSX))
	assert.Equal(t, "plans/a_tasks.json", DefaultOutput("plans/a.json", true, report.FormatJSON))
	assert.Equal(t, "a.xlsx", DefaultOutput("s3://bucket/plans/a.mpp", true, report.FormatXLSX))
}

func TestVisualize(t *testing.T) {
	e, input := newTestEngine(t, &fakeSource{dump: sampleDump()}, nil)
	_, err := e.Convert(context.Background(), Job{Input: input})
	require.NoError(t, err)

	tl, err := e.Visualize(context.Background(), VisualizeJob{Input: "corrected_project.xlsx", Resources: true})
	require.NoError(t, err)
	assert.True(t, tl.Corrected)
	assert.Len(t, tl.Bars, 3)
	assert.Len(t, tl.Resources, 1)

	page, err := os.ReadFile(DefaultChartOutput)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Project Gantt Chart")

	_, err = e.Visualize(context.Background(), VisualizeJob{Input: "absent.xlsx"})
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestNewLogger_Redacts(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LogOptions{JSON: true})
	log.Info("connecting", "secret_access_key", "AKIA-very-secret", "bucket", "plans")

	out := buf.String()
	assert.NotContains(t, out, "AKIA-very-secret")
	assert.Contains(t, out, `"secret_access_key":"[REDACTED]"`)
	assert.Contains(t, out, `"bucket":"plans"`)
}
