// Package timeline turns an exported task workbook into an interactive
// HTML gantt chart.
package timeline

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mppkit/mppconvert/pkg/schedule"
)

const (
	// CorrectedSheet is preferred over any requested sheet when present.
	CorrectedSheet = "Tasks_Corrected"
	DefaultSheet   = "Tasks"
)

// Status buckets task progress for colouring.
type Status string

const (
	StatusComplete   Status = "Complete"
	StatusInProgress Status = "In Progress"
	StatusNotStarted Status = "Not Started"
)

// StatusOf maps percent complete to a Status.
func StatusOf(percent float64) Status {
	switch {
	case percent >= 100:
		return StatusComplete
	case percent > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Bar is one drawable task.
type Bar struct {
	ID           string
	Name         string
	DisplayName  string
	WBS          string
	Start        time.Time
	Finish       time.Time
	Duration     string
	DurationDays float64
	Hours        *float64
	Progress     float64
	Status       Status
	Resources    string
	Predecessors string
	Source       string
	Critical     bool
	Milestone    bool
}

// ResourceCost is one bar of the resource chart.
type ResourceCost struct {
	Name string
	Type string
	Cost float64
}

// Timeline is the chart input read from a workbook.
type Timeline struct {
	Sheet     string
	Corrected bool
	Bars      []Bar
	// Skipped counts rows without a usable start and finish.
	Skipped   int
	Resources []ResourceCost
}

// LoadOptions selects what Load reads.
type LoadOptions struct {
	// SheetName is used when the workbook has no corrected sheet.
	SheetName string
	Resources bool
}

// Load reads a task workbook written by the converter, or any workbook
// with the same column names.
func Load(r io.Reader, opts LoadOptions) (*Timeline, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheet
	}
	for _, s := range sheets {
		if s == CorrectedSheet {
			sheet = s
			break
		}
	}
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (have %s)", sheet, strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	tl, err := readTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	tl.Sheet = sheet

	if opts.Resources {
		for _, s := range sheets {
			if strings.Contains(s, "Resource") {
				rows, err := f.GetRows(s, excelize.Options{RawCellValue: true})
				if err != nil {
					return nil, err
				}
				tl.Resources = readResources(rows)
				break
			}
		}
	}
	return tl, nil
}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func headerIndex(header []string) columns {
	c := make(columns, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := c[h]; !dup {
			c[h] = i
		}
	}
	return c
}

func readTasks(rows [][]string) (*Timeline, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty sheet")
	}
	cols := headerIndex(rows[0])
	for _, required := range []string{"Name", "Start", "Finish"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	tl := &Timeline{}
	_, tl.Corrected = cols["Duration_Corrected"]

	for _, row := range rows[1:] {
		start, okStart := parseCellDate(cols.get(row, "Start"))
		finish, okFinish := parseCellDate(cols.get(row, "Finish"))
		if !okStart || !okFinish {
			tl.Skipped++
			continue
		}

		progress, _ := strconv.ParseFloat(cols.get(row, "Percent Complete"), 64)
		level, _ := strconv.Atoi(strings.TrimSuffix(cols.get(row, "Outline Level"), ".0"))
		name := cols.get(row, "Name")

		b := Bar{
			ID:           cols.get(row, "ID"),
			Name:         name,
			DisplayName:  strings.Repeat("  ", max(level, 0)) + name,
			WBS:          cols.get(row, "WBS"),
			Start:        start,
			Finish:       finish,
			Progress:     progress,
			Status:       StatusOf(progress),
			Resources:    cols.get(row, "Resource Names"),
			Predecessors: cols.get(row, "Predecessors"),
			Critical:     parseBool(cols.get(row, "Critical")),
			Milestone:    parseBool(cols.get(row, "Milestone")),
		}
		if tl.Corrected {
			b.Duration = cols.get(row, "Duration_Corrected")
			b.Source = cols.get(row, "Duration_Source")
			if h, err := strconv.ParseFloat(cols.get(row, "Duration_Corrected_Hours"), 64); err == nil {
				b.Hours = &h
			}
		} else {
			b.Duration = cols.get(row, "Duration")
		}
		b.DurationDays = DurationDays(b.Duration)
		tl.Bars = append(tl.Bars, b)
	}
	return tl, nil
}

func readResources(rows [][]string) []ResourceCost {
	if len(rows) == 0 {
		return nil
	}
	cols := headerIndex(rows[0])
	var out []ResourceCost
	for _, row := range rows[1:] {
		name := cols.get(row, "Name")
		if name == "" {
			continue
		}
		cost, _ := strconv.ParseFloat(cols.get(row, "Cost"), 64)
		out = append(out, ResourceCost{Name: name, Type: cols.get(row, "Type"), Cost: cost})
	}
	return out
}

// parseCellDate accepts the converter's text dates and raw Excel serial
// dates.
func parseCellDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t := schedule.ParseDate(s); !t.IsZero() {
		return t, true
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	}
	return false
}

var durationPattern = regexp.MustCompile(`^([\d.]+)\s*([a-z]+)`)

// DurationDays converts a duration string such as "40.0eh" or "3w" to
// working days: hours and elapsed units count eight to a day, weeks five
// days and months twenty. Unparseable input is zero days.
func DurationDays(s string) float64 {
	m := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch unit := m[2]; {
	case strings.HasPrefix(unit, "d"):
		return v
	case strings.HasPrefix(unit, "h"), strings.HasPrefix(unit, "e"):
		return v / 8
	case strings.HasPrefix(unit, "w"):
		return v * 5
	case strings.HasPrefix(unit, "m"):
		return v * 20
	default:
		return v
	}
}
