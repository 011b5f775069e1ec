package middleware

import (
	"peerlink/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TracingMiddleware spans every request and tags it with the relay's
// routing context: the room the request addresses and, where present,
// the role or target host from the query string.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.TraceHTTPRequest(c.Request.Context(), c.Request.Method, c.FullPath())
		defer span.End()

		span.SetAttributes(
			attribute.String("http.host", c.Request.Host),
			attribute.String("http.remote_addr", c.ClientIP()),
		)
		if room := c.Param("id"); room != "" {
			span.SetAttributes(tracing.RoomIDKey.String(room))
		}
		if role := c.Query("role"); role != "" {
			span.SetAttributes(tracing.RoleKey.String(role))
		}
		if host := c.Query("host_id"); host != "" {
			span.SetAttributes(tracing.AgentIDKey.String(host))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		if c.Writer.Status() >= 400 {
			span.SetStatus(codes.Error, c.Errors.String())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}
