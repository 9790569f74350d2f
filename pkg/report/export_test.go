package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mppkit/mppconvert/pkg/aggregate"
	"github.com/mppkit/mppconvert/pkg/policy"
)

func correctedDoc(t *testing.T) Document {
	t.Helper()
	corrected := fixtureCorrected()
	findings := []policy.Finding{{TaskID: 4, Name: "Decommission", RuleID: "suspect", Note: "check", Source: corrected[4].SourceLabel()}}
	doc, err := NewCorrectedDocument(fixtureProject(), corrected, aggregate.Summarize(corrected), findings)
	require.NoError(t, err)
	return doc
}

func TestNewCorrectedDocument(t *testing.T) {
	doc := correctedDoc(t)

	var names []string
	for _, s := range doc.Sheets() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{SheetTasksCorrected, SheetSummary, SheetResources, SheetReview}, names)

	require.Len(t, doc.Tasks.Rows, 5)
	row := doc.Tasks.Rows[2]
	require.Len(t, row, len(correctedHeader))
	assert.Equal(t, "10.0eh", row[3])
	assert.Equal(t, 10.0, row[4])
	assert.Equal(t, "240.0h", row[5])
	assert.Equal(t, 240.0, row[6])
	assert.Equal(t, "ReferenceAcceptedDayUnitFix", row[7])
	assert.Equal(t, "1SS+2d", row[11])

	assert.Equal(t, "ReferenceAcceptedSuspectFactor (factor 3.4x)", doc.Tasks.Rows[4][7])

	_, err := NewCorrectedDocument(fixtureProject(), fixtureCorrected()[:2], aggregate.Summary{}, nil)
	assert.Error(t, err)
}

func TestNewPlainDocument(t *testing.T) {
	p := fixtureProject()
	p.Resources = nil
	doc := NewPlainDocument(p)

	require.Len(t, doc.Sheets(), 1)
	assert.Equal(t, SheetTasks, doc.Tasks.Name)
	assert.Equal(t, plainHeader, doc.Tasks.Header)
	assert.Equal(t, "40.0eh", doc.Tasks.Rows[1][3])
	assert.Equal(t, "2024-03-01T08:00", doc.Tasks.Rows[1][4])
}

func TestRender_XLSX(t *testing.T) {
	artifacts, err := Render(correctedDoc(t), FormatXLSX, 50)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	f, err := excelize.OpenReader(bytes.NewReader(artifacts[0].Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTasksCorrected, SheetSummary, SheetResources, SheetReview}, f.GetSheetList())

	rows, err := f.GetRows(SheetTasksCorrected)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, correctedHeader, rows[0])
	assert.Equal(t, "Survey", rows[2][2])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total tasks", "5", "100%"}, summary[6])

	styleID, err := f.GetCellStyle(SheetTasksCorrected, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	// Name column: the longest name is 52 runes, capped at 50.
	width, err := f.GetColWidth(SheetTasksCorrected, "C")
	require.NoError(t, err)
	assert.InDelta(t, 50, width, 1e-9)

	// ID column: header "ID" is the longest cell.
	width, err = f.GetColWidth(SheetTasksCorrected, "A")
	require.NoError(t, err)
	assert.InDelta(t, 4, width, 1e-9)
}

func TestRender_CSV(t *testing.T) {
	artifacts, err := Render(correctedDoc(t), FormatCSV, 50)
	require.NoError(t, err)
	require.Len(t, artifacts, 4)

	assert.Equal(t, "out/plan.csv", artifacts[0].Path("out/plan.csv"))
	assert.Equal(t, "out/plan_summary.csv", artifacts[1].Path("out/plan.csv"))
	assert.Equal(t, "out/plan_resources.csv", artifacts[2].Path("out/plan.csv"))
	assert.Equal(t, "out/plan_review.csv", artifacts[3].Path("out/plan.csv"))

	lines := strings.Split(strings.TrimSpace(string(artifacts[0].Data)), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "ID,WBS,Name,Duration_Original,"))
	assert.Equal(t, "1,1,Survey,40.0eh,40,960.0h,960,RawAcceptedScaled24x,2024-03-01T08:00,2024-03-02T08:00,100,,,0,,TRUE,FALSE,FALSE,,1", lines[2])

	assert.Contains(t, string(artifacts[1].Data), "Correction factor,2.4x,\n")
}

func TestRender_JSON(t *testing.T) {
	artifacts, err := Render(correctedDoc(t), FormatJSON, 50)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	data := artifacts[0].Data

	var payload struct {
		Tasks     []map[string]any `json:"tasks"`
		Summary   []map[string]any `json:"summary"`
		Resources []map[string]any `json:"resources"`
		Review    []map[string]any `json:"review"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Tasks, 5)
	assert.Equal(t, "Install pumps", payload.Tasks[2]["Name"])
	assert.Equal(t, 240.0, payload.Tasks[2]["Duration_Corrected_Hours"])
	assert.Equal(t, true, payload.Tasks[1]["Critical"])
	assert.Len(t, payload.Summary, 9)
	assert.Len(t, payload.Resources, 1)
	assert.Len(t, payload.Review, 1)

	// Keys follow column order.
	first := string(data[bytes.Index(data, []byte(`"ID"`)):])
	assert.Less(t, strings.Index(first, `"WBS"`), strings.Index(first, `"Name"`))
	assert.Less(t, strings.Index(first, `"Name"`), strings.Index(first, `"Duration_Original"`))
}

func TestRender_JSONPlainHasEmptyResources(t *testing.T) {
	p := fixtureProject()
	p.Resources = nil
	artifacts, err := Render(NewPlainDocument(p), FormatJSON, 50)
	require.NoError(t, err)
	assert.Contains(t, string(artifacts[0].Data), `"resources": []`)
	assert.NotContains(t, string(artifacts[0].Data), `"summary"`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, ".csv", f.Ext())

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
