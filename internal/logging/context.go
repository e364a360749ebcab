package logging

import (
	"context"
	"log/slog"
)

// Standardized structured logging keys.
const (
	// FieldComponent names the emitting component.
	FieldComponent = "component"
	// FieldContainer is the container path a log line concerns.
	FieldContainer = "container"
	// FieldPage is the one-based page number a log line concerns.
	FieldPage = "page"
	// FieldJobID is the conversion queue item identifier.
	FieldJobID = "job_id"
	// FieldCorrelationID ties all log lines of one conversion run together.
	FieldCorrelationID = "correlation_id"
)

type contextKey int

const (
	jobIDKey contextKey = iota
	correlationIDKey
)

// ContextWithJob tags ctx with a queue job identifier and correlation id.
func ContextWithJob(ctx context.Context, jobID int64, correlationID string) context.Context {
	ctx = context.WithValue(ctx, jobIDKey, jobID)
	if correlationID != "" {
		ctx = context.WithValue(ctx, correlationIDKey, correlationID)
	}
	return ctx
}

// ContextFields extracts standardized slog attributes from the context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(jobIDKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldJobID, id))
	}
	if rid, ok := ctx.Value(correlationIDKey).(string); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}
