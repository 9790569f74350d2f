package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mppkit/mppconvert/pkg/correction"
)

var testUnitHours = map[string]float64{"eh": 1, "d": 24, "ed": 24}

const sampleDump = `{
  "properties": {"project_title": "Plant Upgrade", "manager": "Ops", "start_date": "2024-03-01T08:00:00", "finish_date": "2024-06-28"},
  "tasks": [
    null,
    {"id": 0, "unique_id": 0, "name": "Plant Upgrade", "summary": true, "outline_level": 0},
    {"id": 1, "unique_id": 11, "wbs": "1.1", "name": "Survey",
     "duration": {"value": 40, "units": "eh", "text": "40.0eh"},
     "start": "2024-03-01T08:00:00", "finish": "2024-03-02T23:59",
     "percent_complete": 100, "critical": true, "outline_level": 1, "cost": 1200.5},
    {"id": 2, "name": "Install",
     "duration": {"text": "3.0d"},
     "predecessors": [{"predecessor_id": 1, "type": "ss", "lag": {"text": "-2.0d"}}, {"type": "FS"}],
     "outline_level": 2, "milestone": false}
  ],
  "resources": [
    {"id": 1, "name": "Crew", "type": "WORK", "cost": 300, "standard_rate": "40.0/h"},
    {"id": 2, "name": ""},
    null
  ]
}`

func TestAdapt(t *testing.T) {
	var d Dump
	require.NoError(t, json.Unmarshal([]byte(sampleDump), &d))

	p := Adapt(&d, testUnitHours)

	assert.Equal(t, "Plant Upgrade", p.Properties.Title)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), p.Properties.Start)
	assert.Equal(t, time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), p.Properties.Finish)

	require.Len(t, p.Tasks, 3, "null tasks are skipped")

	root := p.Tasks[0]
	assert.True(t, root.Summary)
	assert.Equal(t, correction.UnitUnknown, root.Duration.Unit)
	assert.Equal(t, "", root.StartText())

	survey := p.Tasks[1]
	assert.Equal(t, 11, survey.UniqueID)
	assert.Equal(t, "1.1", survey.WBS)
	assert.Equal(t, correction.UnitElapsedHours, survey.Duration.Unit)
	assert.InDelta(t, 40, survey.Duration.Hours, 1e-9)
	assert.Equal(t, "40.0eh", survey.Duration.Display)
	assert.Equal(t, "2024-03-01T08:00", survey.StartText())
	assert.Equal(t, "2024-03-02T23:59", survey.FinishText())
	assert.True(t, survey.Critical)
	assert.InDelta(t, 1200.5, survey.Cost, 1e-9)

	install := p.Tasks[2]
	assert.Equal(t, 2, install.UniqueID, "unique id falls back to id")
	assert.Equal(t, correction.UnitDays, install.Duration.Unit)
	assert.InDelta(t, 72, install.Duration.Hours, 1e-9)
	assert.Equal(t, "1SS-2d; UnknownFS", install.PredecessorText())
	assert.Equal(t, 2, install.OutlineLevel)

	require.Len(t, p.Resources, 1, "unnamed and null resources are dropped")
	assert.Equal(t, "Crew", p.Resources[0].Name)
	assert.InDelta(t, DefaultMaxUnits, p.Resources[0].MaxUnits, 1e-9)

	raws := p.RawDurations()
	require.Len(t, raws, 3)
	assert.Equal(t, 1, raws[1].TaskID)
}

func TestAdapt_Nil(t *testing.T) {
	p := Adapt(nil, testUnitHours)
	require.NotNil(t, p)
	assert.Empty(t, p.Tasks)
}

func TestParseDate(t *testing.T) {
	tests := map[string]time.Time{
		"2024-01-02T03:04:05":  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"2024-01-02T03:04":     time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		"2024-01-02 03:04":     time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		"2024-01-02":           time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"2024-01-02T03:04:05Z": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"  ":                   {},
		"not a date":           {},
	}
	for in, want := range tests {
		assert.True(t, want.Equal(ParseDate(in)), "ParseDate(%q)", in)
	}
}
