// Package policy evaluates user review rules, written as CEL expressions,
// against corrected tasks.
package policy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"
)

// Rule flags a task for review when Condition evaluates to true.
type Rule struct {
	ID        string `yaml:"id"`
	Condition string `yaml:"condition"` // e.g. "source == 'ReferenceAcceptedSuspectFactor' && critical"
	Note      string `yaml:"note"`
}

// Subject is the view of one corrected task that rules can see.
type Subject struct {
	ID              int
	Name            string
	WBS             string
	Unit            string
	RawHours        float64
	Hours           float64
	Factor          float64
	HasFactor       bool
	Source          string
	Critical        bool
	Milestone       bool
	Summary         bool
	PercentComplete float64
	OutlineLevel    int
	Resources       string
}

func (s Subject) vars() map[string]any {
	return map[string]any{
		"id":               int64(s.ID),
		"name":             s.Name,
		"wbs":              s.WBS,
		"unit":             s.Unit,
		"raw_hours":        s.RawHours,
		"hours":            s.Hours,
		"factor":           s.Factor,
		"has_factor":       s.HasFactor,
		"source":           s.Source,
		"critical":         s.Critical,
		"milestone":        s.Milestone,
		"summary":          s.Summary,
		"percent_complete": s.PercentComplete,
		"outline_level":    int64(s.OutlineLevel),
		"resources":        s.Resources,
	}
}

type compiled struct {
	rule Rule
	prg  cel.Program
}

// CELEngine holds compiled rules, evaluated in the order they were given.
type CELEngine struct {
	env      *cel.Env
	programs []compiled
	logger   *slog.Logger
}

// NewCELEngine declares the Subject variables.
func NewCELEngine(logger *slog.Logger) (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("name", cel.StringType),
		cel.Variable("wbs", cel.StringType),
		cel.Variable("unit", cel.StringType),
		cel.Variable("raw_hours", cel.DoubleType),
		cel.Variable("hours", cel.DoubleType),
		cel.Variable("factor", cel.DoubleType),
		cel.Variable("has_factor", cel.BoolType),
		cel.Variable("source", cel.StringType),
		cel.Variable("critical", cel.BoolType),
		cel.Variable("milestone", cel.BoolType),
		cel.Variable("summary", cel.BoolType),
		cel.Variable("percent_complete", cel.DoubleType),
		cel.Variable("outline_level", cel.IntType),
		cel.Variable("resources", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CELEngine{env: env, logger: logger}, nil
}

// Compile adds rules. A rule that does not type-check as a boolean
// expression fails the whole call.
func (e *CELEngine) Compile(rules []Rule) error {
	for _, r := range rules {
		if r.ID == "" {
			return fmt.Errorf("rule with condition %q has no id", r.Condition)
		}
		ast, issues := e.env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("rule %s compilation error: %w", r.ID, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return fmt.Errorf("rule %s must evaluate to bool, got %s", r.ID, ast.OutputType())
		}

		prg, err := e.env.Program(ast)
		if err != nil {
			return fmt.Errorf("rule %s program creation error: %w", r.ID, err)
		}
		e.programs = append(e.programs, compiled{rule: r, prg: prg})
	}
	return nil
}

// Len is the number of compiled rules.
func (e *CELEngine) Len() int { return len(e.programs) }

// Evaluate returns the rules s matches. Rules that fail at runtime are
// logged and treated as not matching.
func (e *CELEngine) Evaluate(ctx context.Context, s Subject) ([]Rule, error) {
	vars := s.vars()
	var matches []Rule
	for _, c := range e.programs {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		out, _, err := c.prg.ContextEval(ctx, vars)
		if err != nil {
			e.logger.Warn("Rule evaluation failed", "rule_id", c.rule.ID, "task_id", s.ID, "error", err)
			continue
		}
		if match, ok := out.Value().(bool); ok && match {
			matches = append(matches, c.rule)
		}
	}
	return matches, nil
}
