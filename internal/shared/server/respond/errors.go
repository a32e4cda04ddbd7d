package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitresume/internal/shared/telemetry"
)

// Context keys read for log correlation; set by the middleware package.
const (
	requestIDKey = "requestId"
	runIDKey     = "runId"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response and aborts the chain. Client
// errors are logged at warn level, server errors at error level.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString(requestIDKey),
	}
	if runID := c.GetString(runIDKey); runID != "" {
		fields["run_id"] = runID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
