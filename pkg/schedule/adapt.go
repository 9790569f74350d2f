package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mppkit/mppconvert/pkg/correction"
)

// DefaultMaxUnits is the resource capacity assumed when none is reported.
const DefaultMaxUnits = 100.0

var lagPattern = regexp.MustCompile(`^([-+]?[0-9]*\.?[0-9]+)\s*([a-zA-Z%]*)$`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Adapt maps a reader dump into a Project. Null tasks are skipped,
// resources without a name are dropped, and every absent field takes its
// zero default here so callers never check for nil.
func Adapt(d *Dump, hoursPerUnit map[string]float64) *Project {
	p := &Project{}
	if d == nil {
		return p
	}

	if d.Properties != nil {
		p.Properties = Properties{
			Title:   d.Properties.ProjectTitle,
			Manager: d.Properties.Manager,
			Start:   ParseDate(d.Properties.StartDate),
			Finish:  ParseDate(d.Properties.FinishDate),
		}
	}

	p.Tasks = make([]Task, 0, len(d.Tasks))
	for _, dt := range d.Tasks {
		if dt == nil {
			continue
		}
		p.Tasks = append(p.Tasks, adaptTask(dt, hoursPerUnit))
	}

	for _, dr := range d.Resources {
		if dr == nil || strings.TrimSpace(dr.Name) == "" {
			continue
		}
		p.Resources = append(p.Resources, Resource{
			ID:           intOr(dr.ID, 0),
			Name:         dr.Name,
			Type:         dr.Type,
			Cost:         floatOr(dr.Cost, 0),
			StandardRate: dr.StandardRate,
			MaxUnits:     floatOr(dr.MaxUnits, DefaultMaxUnits),
		})
	}
	return p
}

func adaptTask(dt *DumpTask, hoursPerUnit map[string]float64) Task {
	id := intOr(dt.ID, 0)

	var raw correction.RawDurationRecord
	if dt.Duration != nil {
		raw = correction.ParseRaw(id, dt.Duration.Text, dt.Duration.Value, dt.Duration.Units, hoursPerUnit)
	} else {
		raw = correction.RawDurationRecord{TaskID: id, Unit: correction.UnitUnknown}
	}

	t := Task{
		ID:              id,
		UniqueID:        intOr(dt.UniqueID, id),
		WBS:             dt.WBS,
		Name:            dt.Name,
		Duration:        raw,
		Start:           ParseDate(dt.Start),
		Finish:          ParseDate(dt.Finish),
		PercentComplete: floatOr(dt.PercentComplete, 0),
		ResourceNames:   dt.ResourceNames,
		Cost:            floatOr(dt.Cost, 0),
		Work:            dt.Work,
		Critical:        boolOr(dt.Critical),
		Milestone:       boolOr(dt.Milestone),
		Summary:         boolOr(dt.Summary),
		Notes:           dt.Notes,
		OutlineLevel:    intOr(dt.OutlineLevel, 0),
	}

	for _, dr := range dt.Predecessors {
		if dr == nil {
			continue
		}
		rel := Relation{
			PredecessorID: dr.PredecessorID,
			Type:          RelationType(strings.ToUpper(strings.TrimSpace(dr.Type))),
		}
		if dr.Lag != nil {
			rel.Lag, rel.LagUnit = parseLag(dr.Lag)
		}
		t.Predecessors = append(t.Predecessors, rel)
	}
	return t
}

// parseLag prefers the explicit amount and unit, falling back to the
// text form ("-2.0d"). Lags may be negative.
func parseLag(d *DumpDuration) (float64, string) {
	amount, unit := 0.0, strings.TrimSpace(d.Units)
	m := lagPattern.FindStringSubmatch(strings.TrimSpace(d.Text))
	switch {
	case d.Value != nil:
		amount = *d.Value
	case m != nil:
		amount, _ = strconv.ParseFloat(m[1], 64)
	}
	if unit == "" && m != nil {
		unit = m[2]
	}
	return amount, unit
}

// ParseDate accepts the date renderings the reader and spreadsheets
// produce. Unparseable or empty input yields the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool) bool {
	return v != nil && *v
}
