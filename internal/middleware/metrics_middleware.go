package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bizreview-backend/internal/metrics"
)

// MetricsMiddleware records request counts and latency by route pattern.
// The scrape endpoint itself is not recorded.
func MetricsMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		done := metrics.InFlight()
		defer done()

		start := time.Now()
		c.Next()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
