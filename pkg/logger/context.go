package logger

import "context"

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// WithRequestID stores the correlation identifier in ctx together with a
// child logger that stamps it on every line.
func WithRequestID(ctx context.Context, base *Logger, requestID string) context.Context {
	if base == nil {
		base = Get()
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return context.WithValue(ctx, loggerKey, base.With("request_id", requestID))
}

// RequestIDFromContext returns the correlation identifier or "" if none is set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the request-scoped logger, falling back to the global one.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
			return l
		}
	}
	return Get()
}

// ContextWith returns ctx carrying a child of the request logger with extra fields
func ContextWith(ctx context.Context, args ...interface{}) context.Context {
	return context.WithValue(ctx, loggerKey, FromContext(ctx).With(args...))
}
