package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps otelgin. Server errors mark the span as failed.
// Health checks and the API document are not traced.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			return c.FullPath() != "/swagger/*any"
		}),
	)
}

// SpanEnricher adds the request id and the authenticated user to the
// request span and marks 5xx answers as errors. It runs after JWTAuth.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if id := GetRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if claims := GetJWTClaims(c); claims != nil {
			span.SetAttributes(
				telemetry.AttrUserID.String(claims.UserID),
				telemetry.AttrUserType.String(claims.UserType),
			)
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
