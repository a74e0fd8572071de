package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/metrics"
	"hippo-backend/internal/shared/telemetry"
)

// Logging records latency for every request and writes one access line per
// request, skipping preflights and metrics scrapes. The level follows the
// response status. Handlers add "applicationId" and "statusTransition" to
// the context to have them logged.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()

		metrics.ObserveRequest(c.Request.Method, route, status, elapsed)
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == "/metrics" {
			return
		}

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       route,
			"status":      status,
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id, ok := IdentityFromContext(c); ok {
			fields["user_id"] = id.UserID
			fields["dev_identity"] = id.Dev
		}
		for key, field := range map[string]string{"applicationId": "application_id", "statusTransition": "status_transition"} {
			if v := c.GetString(key); v != "" {
				fields[field] = v
			}
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
