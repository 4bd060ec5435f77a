package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPipeline is the standardized structured logging key for pipeline names.
	FieldPipeline = "pipeline"
	// FieldRunID is the standardized structured logging key for render run identifiers.
	FieldRunID = "run_id"
	// FieldBinary is the standardized structured logging key for external tool names.
	FieldBinary = "binary"
	// FieldOutput is the standardized structured logging key for output destinations.
	FieldOutput = "output"
)

type contextKey string

const (
	runIDKey    contextKey = "splice.run_id"
	pipelineKey contextKey = "splice.pipeline"
)

// WithRunID stamps a render run identifier onto the context.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the render run identifier, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithPipeline stamps the active pipeline name onto the context.
func WithPipeline(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, pipelineKey, name)
}

// PipelineFromContext extracts the active pipeline name, if present.
func PipelineFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(pipelineKey).(string)
	return name, ok && name != ""
}

// ContextFields extracts standardized slog attributes from the context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if name, ok := PipelineFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPipeline, name))
	}
	return fields
}

// WithContext returns a logger augmented with fields derived from the
// supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
