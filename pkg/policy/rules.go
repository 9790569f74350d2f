package policy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mppkit/mppconvert/pkg/correction"
	"github.com/mppkit/mppconvert/pkg/schedule"
)

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules decodes a rules document:
//
//	rules:
//	  - id: suspect_on_critical_path
//	    condition: "source == 'ReferenceAcceptedSuspectFactor' && critical"
//	    note: confirm with the planner
func LoadRules(r io.Reader) ([]Rule, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f ruleFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse rules yaml: %w", err)
	}
	return f.Rules, nil
}

// LoadRulesFile reads rules from path.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return LoadRules(bytes.NewReader(data))
}

// Finding is one rule match on one task.
type Finding struct {
	TaskID int
	Name   string
	RuleID string
	Note   string
	Source string
}

// Header names the review sheet columns.
var Header = []string{"ID", "Name", "Rule", "Note", "Duration_Source"}

// Strings returns the finding as sheet cells.
func (f Finding) Strings() []string {
	return []string{fmt.Sprint(f.TaskID), f.Name, f.RuleID, f.Note, f.Source}
}

// NewSubject joins a task with its corrected duration.
func NewSubject(t schedule.Task, c correction.CorrectedDurationRecord) Subject {
	return Subject{
		ID:              t.ID,
		Name:            t.Name,
		WBS:             t.WBS,
		Unit:            t.Duration.Unit.String(),
		RawHours:        c.RawHours,
		Hours:           c.Hours,
		Factor:          c.Factor,
		HasFactor:       c.HasFactor,
		Source:          c.Source.String(),
		Critical:        t.Critical,
		Milestone:       t.Milestone,
		Summary:         t.Summary,
		PercentComplete: t.PercentComplete,
		OutlineLevel:    t.OutlineLevel,
		Resources:       t.ResourceNames,
	}
}

// Review evaluates every task against the engine's rules. tasks and
// corrected must be parallel slices.
func (e *CELEngine) Review(ctx context.Context, tasks []schedule.Task, corrected []correction.CorrectedDurationRecord) ([]Finding, error) {
	if len(tasks) != len(corrected) {
		return nil, fmt.Errorf("review: %d tasks but %d corrected durations", len(tasks), len(corrected))
	}
	var findings []Finding
	for i, t := range tasks {
		matches, err := e.Evaluate(ctx, NewSubject(t, corrected[i]))
		if err != nil {
			return nil, err
		}
		for _, r := range matches {
			findings = append(findings, Finding{
				TaskID: t.ID,
				Name:   t.Name,
				RuleID: r.ID,
				Note:   r.Note,
				Source: corrected[i].SourceLabel(),
			})
		}
	}
	return findings, nil
}
