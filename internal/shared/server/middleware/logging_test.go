package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), Auth("dev"), Logging())
	router.POST("/api/v1/admin/applications/:id/verification", func(c *gin.Context) {
		c.Set("applicationId", "app-1")
		c.Set("statusTransition", "pending_review->verified")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/applications/app-1/verification", nil)
	req.Header.Set("X-User-Id", "admin-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatalf("expected log output")
	}
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "user_id", "application_id", "duration_ms", "status", "status_transition", "route"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["user_id"] != "admin-1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["application_id"] != "app-1" {
		t.Fatalf("unexpected application_id: %v", payload["application_id"])
	}
	if payload["status_transition"] != "pending_review->verified" {
		t.Fatalf("unexpected status_transition: %v", payload["status_transition"])
	}
	if payload["route"] != "/api/v1/admin/applications/:id/verification" {
		t.Fatalf("unexpected route: %v", payload["route"])
	}
	if payload["dev_identity"] != true {
		t.Fatalf("expected dev_identity true, got %v", payload["dev_identity"])
	}
}

func TestLoggingSkipsMetricsAndLevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Logging())
	router.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "# metrics") })
	router.GET("/api/v1/applications/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	var buf bytes.Buffer
	defer telemetry.SetOutput(&buf)()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if buf.Len() != 0 {
		t.Fatalf("metrics scrape should not be logged: %s", buf.String())
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/applications/missing", nil))
	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected warn for 404, got %v", payload["level"])
	}
	if _, ok := payload["user_id"]; ok {
		t.Fatalf("anonymous request should carry no user_id")
	}
}
