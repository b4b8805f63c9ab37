// metrics.go records per-request Prometheus metrics using the matched route
// template as the path label so parameterized routes do not explode label
// cardinality.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/telemetry"
)

// MetricsMiddleware returns a Gin handler that records a request counter and a
// latency histogram for every request.
//
// The path label is set from c.FullPath(), the matched Gin route template
// (e.g. /api/senior-citizens/:id) rather than the raw URL. Requests that match
// no registered route use the literal string "<no-route>".
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
