// Package schedule holds the fixed task, resource and relation shapes the
// rest of the converter works with, independent of the reader's output.
package schedule

import (
	"time"

	"github.com/mppkit/mppconvert/pkg/correction"
)

// DateLayout is the rendering of task dates in exports.
const DateLayout = "2006-01-02T15:04"

// RelationType is a predecessor link kind.
type RelationType string

const (
	FinishToStart  RelationType = "FS"
	StartToStart   RelationType = "SS"
	StartToFinish  RelationType = "SF"
	FinishToFinish RelationType = "FF"
)

// Relation is a link from a predecessor task.
type Relation struct {
	PredecessorID *int
	Type          RelationType
	Lag           float64
	LagUnit       string
}

// Task is a schedule task with every field defaulted.
type Task struct {
	ID              int
	UniqueID        int
	WBS             string
	Name            string
	Duration        correction.RawDurationRecord
	Start           time.Time
	Finish          time.Time
	PercentComplete float64
	Predecessors    []Relation
	ResourceNames   string
	Cost            float64
	Work            string
	Critical        bool
	Milestone       bool
	Summary         bool
	Notes           string
	OutlineLevel    int
}

// StartText renders Start, or "" when the task has none.
func (t Task) StartText() string { return formatDate(t.Start) }

// FinishText renders Finish, or "" when the task has none.
func (t Task) FinishText() string { return formatDate(t.Finish) }

// PredecessorText renders the predecessor links, e.g. "3FS; 5SS+2d".
func (t Task) PredecessorText() string { return FormatRelations(t.Predecessors) }

type Resource struct {
	ID           int
	Name         string
	Type         string
	Cost         float64
	StandardRate string
	MaxUnits     float64
}

// Properties are the project-level header fields.
type Properties struct {
	Title   string
	Manager string
	Start   time.Time
	Finish  time.Time
}

// Project is everything read from one schedule file.
type Project struct {
	Properties Properties
	Tasks      []Task
	Resources  []Resource
}

// RawDurations returns the raw duration of every task, in task order.
func (p *Project) RawDurations() []correction.RawDurationRecord {
	out := make([]correction.RawDurationRecord, len(p.Tasks))
	for i, t := range p.Tasks {
		out[i] = t.Duration
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
