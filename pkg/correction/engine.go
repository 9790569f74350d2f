package correction

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Lookup resolves the reference duration of a task.
type Lookup interface {
	Lookup(taskID int) (ReferenceDurationRecord, bool)
}

// Engine applies a Policy to a batch of raw durations.
type Engine struct {
	Policy    Policy
	Reference Lookup // nil when no reference table is available
	Workers   int
}

// NewEngine returns an engine using policy and ref. A nil ref sends every
// task through the no-reference branch.
func NewEngine(policy Policy, ref Lookup, workers int) *Engine {
	return &Engine{Policy: policy, Reference: ref, Workers: workers}
}

// CorrectOne corrects a single record against the engine's reference.
func (e *Engine) CorrectOne(raw RawDurationRecord) CorrectedDurationRecord {
	if e.Reference != nil {
		if ref, ok := e.Reference.Lookup(raw.TaskID); ok {
			return e.Policy.Correct(raw, &ref)
		}
	}
	return e.Policy.Correct(raw, nil)
}

// CorrectAll corrects every record. Decisions are independent, so the
// batch is split across workers; the output keeps the input order.
func (e *Engine) CorrectAll(ctx context.Context, raws []RawDurationRecord) ([]CorrectedDurationRecord, error) {
	ctx, span := otel.Tracer("mppconvert/correction").Start(ctx, "Correction.CorrectAll")
	defer span.End()

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	span.SetAttributes(
		attribute.Int("records", len(raws)),
		attribute.Int("workers", workers),
	)

	out := make([]CorrectedDurationRecord, len(raws))
	if len(raws) == 0 {
		return out, nil
	}

	chunk := (len(raws) + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(raws); start += chunk {
		end := min(start+chunk, len(raws))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = e.CorrectOne(raws[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}
