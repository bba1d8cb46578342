package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/healthwhisperer-backend/internal/observability"
)

// Metrics records request counts and latency by route template. The SSE
// stream is excluded from latency since it stays open for the session.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if route == "/api/sse/stream" {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()
		m.ObserveAPI(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
