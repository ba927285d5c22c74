package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
)

// Profiling labels the request's goroutine with its route, method and the
// resource it serves so profiles can be sliced per endpoint
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" || strings.HasPrefix(route, "/swagger") {
			c.Next()
			return
		}

		labels := map[string]string{
			"route":    route,
			"method":   c.Request.Method,
			"resource": resourceOf(route),
		}
		telemetry.WithLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceOf returns the first path segment after /api/v1,
// e.g. "/api/v1/products/:id" -> "products"
func resourceOf(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/v1/")
	if !ok {
		return ""
	}
	resource, _, _ := strings.Cut(rest, "/")
	return resource
}
