// Package observability provides logging, metrics, and tracing for the client.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the client.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key carrying a per-operation correlation ID.
const CorrelationID LogContextKey = "correlation_id"

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id := ctx.Value(CorrelationID); id != nil {
		return id.(string)
	}
	return ""
}

// ConnLogger provides structured logging for realtime connection events.
type ConnLogger struct {
	component string
	logger    *Logger
}

// NewConnLogger creates a ConnLogger for the given component.
func NewConnLogger(component string) *ConnLogger {
	return &ConnLogger{component: component, logger: GlobalLogger}
}

// LogConnect logs a successful connection.
func (l *ConnLogger) LogConnect(ctx context.Context, url string, attempt int) {
	l.logger.InfoContext(ctx, "realtime connected",
		slog.String("component", l.component),
		slog.String("url", url),
		slog.Int("attempt", attempt),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogDisconnect logs a connection teardown with its reason.
func (l *ConnLogger) LogDisconnect(ctx context.Context, reason string) {
	l.logger.InfoContext(ctx, "realtime disconnected",
		slog.String("component", l.component),
		slog.String("reason", reason),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogEvent logs a delivered or emitted realtime event.
func (l *ConnLogger) LogEvent(ctx context.Context, direction, eventType string) {
	l.logger.InfoContext(ctx, "realtime event",
		slog.String("component", l.component),
		slog.String("direction", direction),
		slog.String("event_type", eventType),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogWarn logs a non-fatal realtime condition, e.g. an emit while disconnected.
func (l *ConnLogger) LogWarn(ctx context.Context, msg string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.WarnContext(ctx, msg, attrs...)
}

// LogError logs a realtime error event.
func (l *ConnLogger) LogError(ctx context.Context, err error, operation string) {
	l.logger.ErrorContext(ctx, "realtime error",
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// APILogger provides structured logging for REST client calls.
type APILogger struct {
	logger *Logger
}

// NewAPILogger creates a new APILogger.
func NewAPILogger() *APILogger {
	return &APILogger{logger: GlobalLogger}
}

// LogRequest logs a completed REST call.
func (l *APILogger) LogRequest(ctx context.Context, method, path string, status int, durMillis int64) {
	l.logger.InfoContext(ctx, "api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Int64("duration_ms", durMillis),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogError logs a failed REST call.
func (l *APILogger) LogError(ctx context.Context, method, path string, err error) {
	l.logger.ErrorContext(ctx, "api request failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}
