// Package engine runs conversion jobs: read a schedule, correct its
// durations, review them and export the result.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mppkit/mppconvert/pkg/config"
	"github.com/mppkit/mppconvert/pkg/storage"
	"github.com/mppkit/mppconvert/pkg/telemetry"
)

// Engine holds what every job shares. It is safe to run jobs one after
// another; each job owns its reader runtime.
type Engine struct {
	Logger *slog.Logger
	Tracer trace.Tracer

	config config.Config
	source Source
	store  *storage.Router
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New builds an Engine with the default configuration, a discarding
// logger and the JVM-backed source.
func New(opts ...Option) *Engine {
	e := &Engine{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer: telemetry.Tracer("mppconvert/engine"),
		config: config.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		e.source = BridgeSource{Config: e.config.Bridge}
	}
	if e.store == nil {
		e.store = storage.NewRouter(e.config.Storage)
	}
	return e
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithConfig sets the resolved configuration.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) { e.config = cfg }
}

// WithSource replaces the schedule reader.
func WithSource(s Source) Option {
	return func(e *Engine) { e.source = s }
}

// WithStore replaces the artifact store.
func WithStore(r *storage.Router) Option {
	return func(e *Engine) { e.store = r }
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config { return e.config }

// recoverPanic turns a panic in a job into an error on *err.
func (e *Engine) recoverPanic(ctx context.Context, err *error) {
	r := recover()
	if r == nil {
		return
	}
	stack := debug.Stack()

	_, span := e.Tracer.Start(ctx, "CriticalPanic")
	span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
	span.SetStatus(codes.Error, "panic")
	span.SetAttributes(attribute.String("crash.reason", fmt.Sprintf("%v", r)))
	span.End()

	e.Logger.Error("CRITICAL FAILURE", "error", r, "stack", string(stack))
	*err = fmt.Errorf("internal error: %v", r)
}
