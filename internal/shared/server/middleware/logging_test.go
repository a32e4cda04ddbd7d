package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"fitresume/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	telemetry.SetupWithWriters("info", &buf)
	t.Cleanup(func() { telemetry.Setup("info", "") })

	router := gin.New()
	router.Use(RequestID(), Logging())
	router.POST("/api/tailor", func(c *gin.Context) {
		c.Set(RunIDKey, "run-1")
		c.Set(VersionIDKey, "version-1")
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/tailor", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "method", "path", "route", "duration_ms", "status", "run_id", "version_id"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["msg"] != "request.complete" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["request_id"] != "req-42" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["route"] != "/api/tailor" {
		t.Fatalf("unexpected route: %v", payload["route"])
	}
	if payload["status"] != float64(http.StatusCreated) {
		t.Fatalf("unexpected status: %v", payload["status"])
	}
}
