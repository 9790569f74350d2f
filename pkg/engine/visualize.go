package engine

import (
	"bytes"
	"context"
	"errors"

	"github.com/mppkit/mppconvert/pkg/storage"
	"github.com/mppkit/mppconvert/pkg/timeline"
)

// DefaultChartOutput is the visualizer's default output path.
const DefaultChartOutput = "gantt_chart.html"

// VisualizeJob renders a task workbook as an HTML gantt chart.
type VisualizeJob struct {
	Input     string
	Output    string
	Title     string
	SheetName string
	Resources bool
}

// Visualize reads the workbook at job.Input, local or s3://, and writes
// the chart to job.Output.
func (e *Engine) Visualize(ctx context.Context, job VisualizeJob) (tl *timeline.Timeline, err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Visualize")
	defer span.End()
	defer e.recoverPanic(ctx, &err)

	data, err := e.store.ReadAll(ctx, job.Input)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fail(InputNotFound, job.Input, ErrInputNotFound)
		}
		return nil, fail(SourceRead, job.Input, err)
	}

	tl, err = timeline.Load(bytes.NewReader(data), timeline.LoadOptions{
		SheetName: job.SheetName,
		Resources: job.Resources,
	})
	if err != nil {
		return nil, fail(SourceRead, job.Input, err)
	}
	e.Logger.Info("Workbook read", "sheet", tl.Sheet, "corrected", tl.Corrected,
		"tasks", len(tl.Bars), "skipped", tl.Skipped, "resources", len(tl.Resources))
	if len(tl.Bars) == 0 {
		return tl, fail(EmptyResult, job.Input, ErrEmptyResult)
	}

	output := job.Output
	if output == "" {
		output = DefaultChartOutput
	}
	var buf bytes.Buffer
	if err := timeline.Render(&buf, tl, timeline.RenderOptions{Title: job.Title}); err != nil {
		return tl, fail(Export, output, err)
	}
	if err := e.store.Write(ctx, output, buf.Bytes()); err != nil {
		return tl, fail(Export, output, err)
	}
	e.Logger.Info("Chart written", "path", output)
	return tl, nil
}
