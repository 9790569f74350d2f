package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mppkit/mppconvert/pkg/aggregate"
	"github.com/mppkit/mppconvert/pkg/correction"
	"github.com/mppkit/mppconvert/pkg/policy"
	"github.com/mppkit/mppconvert/pkg/reference"
	"github.com/mppkit/mppconvert/pkg/report"
	"github.com/mppkit/mppconvert/pkg/schedule"
	"github.com/mppkit/mppconvert/pkg/storage"
)

// DefaultCorrectedOutput is the corrected-mode output base name.
const DefaultCorrectedOutput = "corrected_project"

// Job is one conversion request. Empty fields fall back to the engine
// configuration.
type Job struct {
	Input  string
	Output string
	// Reference overrides the configured reference table path.
	Reference string
	// Plain skips correction and exports the reader's durations.
	Plain     bool
	Format    report.Format
	RulesFile string
}

// Result is what a job produced.
type Result struct {
	JobID     string
	Input     string
	Project   *schedule.Project
	Corrected []correction.CorrectedDurationRecord
	Summary   aggregate.Summary
	Findings  []policy.Finding
	// Reference is nil when no table was used.
	Reference *reference.Table
	Warnings  []string
	Outputs   []string
}

// Plain reports whether the result skipped correction.
func (r *Result) Plain() bool { return r.Corrected == nil }

// DefaultOutput derives the output path: corrected_project.<ext> in
// corrected mode, the input path with the format extension in plain mode.
func DefaultOutput(input string, plain bool, format report.Format) string {
	if !plain {
		return DefaultCorrectedOutput + format.Ext()
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if storage.IsRemote(input) {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	out := base + format.Ext()
	if out == input {
		out = base + "_tasks" + format.Ext()
	}
	return out
}

// Convert prepares the job and writes its export.
func (e *Engine) Convert(ctx context.Context, job Job) (*Result, error) {
	res, err := e.Prepare(ctx, job)
	if err != nil {
		return res, err
	}
	if err := e.Export(ctx, res, job); err != nil {
		return res, err
	}
	return res, nil
}

// Prepare reads and corrects the input without exporting it.
func (e *Engine) Prepare(ctx context.Context, job Job) (res *Result, err error) {
	res = &Result{JobID: uuid.NewString(), Input: job.Input}
	log := e.Logger.With("job_id", res.JobID)

	ctx, span := e.Tracer.Start(ctx, "Engine.Prepare")
	span.SetAttributes(
		attribute.String("job.id", res.JobID),
		attribute.String("job.input", job.Input),
		attribute.Bool("job.plain", job.Plain),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	defer e.recoverPanic(ctx, &err)

	log.Info("Reading schedule", "input", job.Input)
	project, err := e.read(ctx, log, job.Input)
	if err != nil {
		return res, err
	}
	res.Project = project
	span.SetAttributes(attribute.Int("job.tasks", len(project.Tasks)))
	log.Info("Schedule read", "tasks", len(project.Tasks), "resources", len(project.Resources))

	if job.Plain {
		return res, nil
	}

	table, warn := e.loadReference(ctx, log, job)
	res.Reference = table
	if warn != "" {
		res.Warnings = append(res.Warnings, warn)
	}

	var lookup correction.Lookup
	if table != nil {
		lookup = table
	}
	cc := e.config.Correction
	ce := correction.NewEngine(correction.Policy{
		DayUnitMin:        cc.DayUnitMin,
		DayUnitMax:        cc.DayUnitMax,
		AgreementMin:      cc.AgreementMin,
		AgreementMax:      cc.AgreementMax,
		ElapsedHoursMax:   cc.ElapsedHoursMax,
		ElapsedHoursScale: cc.ElapsedHoursScale,
	}, lookup, e.config.Workers)

	res.Corrected, err = ce.CorrectAll(ctx, project.RawDurations())
	if err != nil {
		return res, err
	}
	res.Summary = aggregate.Summarize(res.Corrected)
	if err := aggregate.Record(ctx, res.Summary); err != nil {
		log.Debug("Correction metrics not recorded", "error", err)
	}
	log.Info("Durations corrected", "total_raw_hours", res.Summary.RawHours,
		"total_corrected_hours", res.Summary.CorrectedHours, "factor", res.Summary.FactorText())

	rules := job.RulesFile
	if rules == "" {
		rules = e.config.Review.RulesFile
	}
	if rules != "" {
		res.Findings, err = e.review(ctx, log, rules, project, res.Corrected)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (e *Engine) read(ctx context.Context, log *slog.Logger, input string) (*schedule.Project, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Read")
	defer span.End()

	path := input
	if storage.IsRemote(input) {
		local, cleanup, err := e.stage(ctx, input)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		path = local
	} else if _, err := os.Stat(input); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fail(InputNotFound, input, ErrInputNotFound)
		}
		return nil, fail(SourceRead, input, err)
	}

	dump, trace, err := e.source.Read(ctx, path)
	if err != nil {
		f := fail(SourceRead, input, err)
		f.Trace = trace
		return nil, f
	}
	if trace != "" {
		log.Debug("Reader diagnostics", "trace", trace)
	}

	project := schedule.Adapt(dump, e.config.UnitHours)
	if len(project.Tasks) == 0 {
		return nil, fail(EmptyResult, input, ErrEmptyResult)
	}
	return project, nil
}

// stage copies a remote input into a temp dir under its own base name,
// since the reader detects the file format from the extension.
func (e *Engine) stage(ctx context.Context, input string) (string, func(), error) {
	data, err := e.store.ReadAll(ctx, input)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, fail(InputNotFound, input, fmt.Errorf("%w: %w", ErrInputNotFound, err))
		}
		return "", nil, fail(SourceRead, input, err)
	}
	dir, err := os.MkdirTemp("", "mppconvert-input-")
	if err != nil {
		return "", nil, fail(SourceRead, input, err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	local := filepath.Join(dir, filepath.Base(input))
	if err := os.WriteFile(local, data, 0o600); err != nil {
		cleanup()
		return "", nil, fail(SourceRead, input, err)
	}
	return local, cleanup, nil
}

// loadReference returns the reference table, or nil plus a warning when
// one was configured but could not be used.
func (e *Engine) loadReference(ctx context.Context, log *slog.Logger, job Job) (*reference.Table, string) {
	path := job.Reference
	if path == "" {
		path = e.config.Reference.Path
	}
	if path == "" {
		log.Info("No reference table configured, correcting from reader durations only")
		return nil, ""
	}

	ctx, span := e.Tracer.Start(ctx, "Engine.LoadReference")
	defer span.End()

	table, err := reference.Load(ctx, e.store, path, e.config.Reference)
	if err != nil {
		log.Warn("Reference table unavailable, correcting without it", "path", path, "error", err)
		return nil, fmt.Sprintf("reference table unavailable: %v", err)
	}
	log.Info("Reference table loaded", "path", path, "tasks", table.Len(), "skipped_rows", table.Skipped())
	if rows := table.SkippedRows(); len(rows) > 0 {
		log.Warn("Reference rows without a numeric id or hours were ignored", "path", path, "rows", rows)
	}
	return table, ""
}

func (e *Engine) review(ctx context.Context, log *slog.Logger, rulesFile string, p *schedule.Project, corrected []correction.CorrectedDurationRecord) ([]policy.Finding, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Review")
	defer span.End()

	rules, err := policy.LoadRulesFile(rulesFile)
	if err != nil {
		return nil, err
	}
	ce, err := policy.NewCELEngine(log)
	if err != nil {
		return nil, err
	}
	log.Info("Compiling review rules", "count", len(rules))
	if err := ce.Compile(rules); err != nil {
		return nil, err
	}
	findings, err := ce.Review(ctx, p.Tasks, corrected)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("review.findings", len(findings)))
	log.Info("Review complete", "findings", len(findings))
	return findings, nil
}

// Export renders res and writes every artifact.
func (e *Engine) Export(ctx context.Context, res *Result, job Job) (err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Export")
	defer span.End()
	defer e.recoverPanic(ctx, &err)

	format := job.Format
	if format == "" {
		format, err = report.ParseFormat(e.config.Export.Format)
		if err != nil {
			return fail(Export, job.Output, err)
		}
	}
	output := job.Output
	if output == "" {
		output = DefaultOutput(job.Input, res.Plain(), format)
	}

	var doc report.Document
	if res.Plain() {
		doc = report.NewPlainDocument(res.Project)
	} else {
		doc, err = report.NewCorrectedDocument(res.Project, res.Corrected, res.Summary, res.Findings)
		if err != nil {
			return fail(Export, output, err)
		}
	}

	artifacts, err := report.Render(doc, format, e.config.Export.MaxColumnWidth)
	if err != nil {
		return fail(Export, output, err)
	}
	for _, a := range artifacts {
		path := a.Path(output)
		if err := e.store.Write(ctx, path, a.Data); err != nil {
			return fail(Export, path, err)
		}
		res.Outputs = append(res.Outputs, path)
		e.Logger.Info("Artifact written", "job_id", res.JobID, "path", path, "bytes", len(a.Data))
	}
	return nil
}
