package middleware

import (
	"strconv"
	"time"

	"caffito/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route template, so
// /v1/productos/:id is one series regardless of the ID.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "sin_ruta"
		}
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
