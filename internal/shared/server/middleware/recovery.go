package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"fitresume/internal/shared/metrics"
	"fitresume/internal/shared/server/respond"
	"fitresume/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. When the handler had
// already started writing, only the log line and counter are emitted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.IncPanicRecovered()
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			}
			if runID := c.GetString(RunIDKey); runID != "" {
				fields["run_id"] = runID
			}
			telemetry.Error("http.panic", fields)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
