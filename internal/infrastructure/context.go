package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const traceIDContextKey contextKey = "trace_id"

// NewTraceID generates a trace ID for one request.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID returns a context carrying the trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey, traceID)
}

// TraceIDFromContext extracts the trace ID, or "" when absent.
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDContextKey).(string); ok {
		return v
	}
	return ""
}
