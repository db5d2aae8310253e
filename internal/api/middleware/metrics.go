package middleware

import (
	"time"

	"example.com/outcry/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latencies per route pattern
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordHTTPRequest(c.Request.Method+" "+route, c.Writer.Status(), time.Since(start))
	}
}
