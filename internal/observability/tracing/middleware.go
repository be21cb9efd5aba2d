// Package tracing keeps W3C trace context flowing through the service.
// There is no local tracer provider; incoming traceparent headers are
// extracted so log lines correlate with the caller's trace.
package tracing

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/propagation"
)

// GinMiddleware extracts propagation headers into the request context.
func GinMiddleware() gin.HandlerFunc {
	SetPropagator()
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
