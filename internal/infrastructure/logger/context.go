package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is what a request carries for logging. It is copied on every change
// so contexts further up the chain are not affected.
type scope struct {
	logger    *zap.Logger
	requestID string
	userID    string
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, s scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	s := scopeFrom(ctx)
	s.logger = logger
	return withScope(ctx, s)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if s := scopeFrom(ctx); s.logger != nil {
		return s.logger
	}
	return zap.NewNop()
}

// WithRequestID records the request ID and binds it to logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	s := scopeFrom(ctx)
	s.requestID = requestID
	s.logger = logger.With(zap.String("request_id", requestID))
	return withScope(ctx, s), s.logger
}

// WithUserID records the authenticated user and binds it to logger
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	s := scopeFrom(ctx)
	s.userID = userID
	s.logger = logger.With(zap.String("user_id", userID))
	return withScope(ctx, s), s.logger
}

func GetRequestID(ctx context.Context) string { return scopeFrom(ctx).requestID }

func GetUserID(ctx context.Context) string { return scopeFrom(ctx).userID }

// GetTraceID returns the trace ID of the active span, or ""
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// WithTraceContext binds trace_id and span_id of the active span
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// L is the logger application code should use:
//
//	logger.L(ctx).Info("basket updated", zap.Int("created", n))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
