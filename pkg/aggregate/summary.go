// Package aggregate reduces corrected durations to the per-tag counts
// and hour totals reported alongside every corrected export.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mppkit/mppconvert/pkg/correction"
)

// TagCount is the share of records carrying one tag.
type TagCount struct {
	Tag     correction.Tag
	Count   int
	Percent float64
}

// Summary describes a whole corrected record set.
type Summary struct {
	Total          int
	Tags           []TagCount
	RawHours       float64
	CorrectedHours float64
	// Factor is CorrectedHours/RawHours, set only when RawHours > 0.
	Factor    float64
	HasFactor bool
}

// Summarize counts tags and totals hours. Only tags that occur are
// listed, most frequent first, ties kept in tag declaration order.
func Summarize(records []correction.CorrectedDurationRecord) Summary {
	s := Summary{Total: len(records)}

	counts := make(map[correction.Tag]int)
	for _, r := range records {
		counts[r.Source]++
		s.RawHours += r.RawHours
		s.CorrectedHours += r.Hours
	}

	for _, tag := range correction.Tags {
		n := counts[tag]
		if n == 0 {
			continue
		}
		s.Tags = append(s.Tags, TagCount{
			Tag:     tag,
			Count:   n,
			Percent: float64(n) / float64(s.Total) * 100,
		})
	}
	sort.SliceStable(s.Tags, func(i, j int) bool { return s.Tags[i].Count > s.Tags[j].Count })

	if s.RawHours > 0 {
		s.Factor = s.CorrectedHours / s.RawHours
		s.HasFactor = true
	}
	return s
}

// FactorText renders the overall factor as "2.4x", or "N/A".
func (s Summary) FactorText() string {
	if !s.HasFactor {
		return "N/A"
	}
	return fmt.Sprintf("%.1fx", s.Factor)
}

// Row is one line of the summary sheet.
type Row struct {
	Metric     string
	Count      string
	Percentage string
}

// Header names the summary sheet columns.
var Header = []string{"Metric", "Count", "Percentage"}

// Rows lays the summary out as sheet rows.
func (s Summary) Rows() []Row {
	rows := make([]Row, 0, len(s.Tags)+4)
	for _, tc := range s.Tags {
		rows = append(rows, Row{
			Metric:     "Tasks from " + tc.Tag.String(),
			Count:      strconv.Itoa(tc.Count),
			Percentage: fmt.Sprintf("%.1f%%", tc.Percent),
		})
	}
	return append(rows,
		Row{Metric: "Total tasks", Count: strconv.Itoa(s.Total), Percentage: "100%"},
		Row{Metric: "Original MPXJ hours", Count: fmt.Sprintf("%.0f", s.RawHours)},
		Row{Metric: "Corrected hours", Count: fmt.Sprintf("%.0f", s.CorrectedHours)},
		Row{Metric: "Correction factor", Count: s.FactorText()},
	)
}

// Strings returns the row as sheet cells.
func (r Row) Strings() []string {
	return []string{r.Metric, r.Count, r.Percentage}
}

// Record adds the summary's tag counts to the corrections counter of the
// global meter provider.
func Record(ctx context.Context, s Summary) error {
	counter, err := otel.Meter("mppconvert/aggregate").Int64Counter(
		"mppconvert.corrections",
		metric.WithDescription("Corrected task durations by provenance tag"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return err
	}
	for _, tc := range s.Tags {
		counter.Add(ctx, int64(tc.Count), metric.WithAttributes(attribute.String("tag", tc.Tag.String())))
	}
	return nil
}
