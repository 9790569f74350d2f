// Package reference loads the optional table of independently measured
// task durations used to validate or correct the reader's values.
package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mppkit/mppconvert/pkg/config"
	"github.com/mppkit/mppconvert/pkg/correction"
)

// ErrUnavailable wraps every reason the reference table could not be
// used. Callers treat it as a warning and continue without one.
var ErrUnavailable = errors.New("reference table unavailable")

// Format is the encoding of a reference table.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf infers the format from a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return "", errors.New("legacy .xls workbooks are not readable, save the reference as .xlsx or .csv")
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported reference file %q", filepath.Base(path))
	}
}

// Opener fetches a reference file by path or URL.
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Table holds at most one reference record per task id.
type Table struct {
	records map[int]correction.ReferenceDurationRecord
	skipped []int
}

func NewTable() *Table {
	return &Table{records: make(map[int]correction.ReferenceDurationRecord)}
}

// Put stores rec, replacing any earlier record for the same task.
func (t *Table) Put(rec correction.ReferenceDurationRecord) {
	t.records[rec.TaskID] = rec
}

// Lookup implements correction.Lookup.
func (t *Table) Lookup(taskID int) (correction.ReferenceDurationRecord, bool) {
	if t == nil {
		return correction.ReferenceDurationRecord{}, false
	}
	rec, ok := t.records[taskID]
	return rec, ok
}

// Len is the number of distinct task ids.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Skipped counts rows dropped for a non-numeric id or hours value.
func (t *Table) Skipped() int {
	if t == nil {
		return 0
	}
	return len(t.skipped)
}

// SkippedRows lists the 1-based sheet row numbers of skipped rows. The
// header is row 1.
func (t *Table) SkippedRows() []int {
	if t == nil {
		return nil
	}
	return slices.Clone(t.skipped)
}

// Load opens path through o and parses it. Every failure wraps
// ErrUnavailable.
func Load(ctx context.Context, o Opener, path string, cfg config.ReferenceConfig) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	rc, err := o.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer rc.Close()

	t, err := Parse(rc, format, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}
	return t, nil
}

// Parse reads a reference table. For workbooks the configured sheet is
// used, or the first sheet when none is configured.
func Parse(r io.Reader, format Format, cfg config.ReferenceConfig) (*Table, error) {
	var rows [][]string
	switch format {
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		sheet := cfg.Sheet
		if sheet == "" {
			sheets := f.GetSheetList()
			if len(sheets) == 0 {
				return nil, errors.New("workbook has no sheets")
			}
			sheet = sheets[0]
		}
		rows, err = f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		var err error
		rows, err = cr.ReadAll()
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return fromRows(rows, cfg)
}

func fromRows(rows [][]string, cfg config.ReferenceConfig) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.New("no header row")
	}
	header := rows[0]
	idCol := column(header, cfg.IDColumns)
	if idCol < 0 {
		return nil, fmt.Errorf("no id column (looked for %s)", strings.Join(cfg.IDColumns, ", "))
	}
	hoursCol := column(header, cfg.HoursColumns)
	if hoursCol < 0 {
		return nil, fmt.Errorf("no hours column (looked for %s)", strings.Join(cfg.HoursColumns, ", "))
	}
	nameCol := column(header, cfg.NameColumns)

	t := NewTable()
	for i, row := range rows[1:] {
		id, ok := parseID(cell(row, idCol))
		if !ok {
			t.skipped = append(t.skipped, i+2)
			continue
		}
		hours, ok := parseHours(cell(row, hoursCol))
		if !ok {
			t.skipped = append(t.skipped, i+2)
			continue
		}
		t.Put(correction.ReferenceDurationRecord{
			TaskID: id,
			Hours:  hours,
			Name:   strings.TrimSpace(cell(row, nameCol)),
		})
	}
	return t, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseID accepts integers and integral floats ("12", "12.0").
func parseID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// parseHours accepts a decimal point or a decimal comma, with or without
// thousands grouping. Negative values are clamped to zero.
func parseHours(s string) (float64, bool) {
	s = normalizeDecimal(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Max(f, 0), true
}

// normalizeDecimal rewrites s with a decimal point and no grouping. When
// both ',' and '.' appear the later one is the decimal separator. A
// separator that repeats is grouping. A single comma is a decimal comma.
func normalizeDecimal(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, s)

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}
