package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/metrics"
	"hippo-backend/internal/shared/server/respond"
	"hippo-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into the standard 500 envelope. An
// http.ErrAbortHandler panic is re-raised so net/http can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			metrics.IncPanic(c.FullPath())
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"panic":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			}
			if userID := c.GetString(userIDKey); userID != "" {
				fields["user_id"] = userID
			}
			if appID := c.GetString("applicationId"); appID != "" {
				fields["application_id"] = appID
			}
			telemetry.Error("panic", fields)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
