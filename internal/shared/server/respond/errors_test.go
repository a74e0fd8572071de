package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/telemetry"
)

func TestErrMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer telemetry.SetOutput(io.Discard)()

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{name: "locked", err: apperr.Forbidden("application already verified"), status: http.StatusForbidden, code: "forbidden", message: "application already verified"},
		{name: "missing", err: fmt.Errorf("get: %w", apperr.NotFound("application not found")), status: http.StatusNotFound, code: "not_found", message: "application not found"},
		{name: "bad input", err: apperr.Validation("bad fileType"), status: http.StatusBadRequest, code: "validation_error", message: "bad fileType"},
		{name: "anon", err: apperr.Unauthenticated("Not authenticated"), status: http.StatusUnauthorized, code: "unauthorized", message: "Not authenticated"},
		{name: "upstream", err: apperr.Upstream("export failed", errors.New("503")), status: http.StatusBadGateway, code: "upstream_error", message: "export failed"},
		{name: "unknown", err: errors.New("pq: connection refused"), status: http.StatusInternalServerError, code: "internal_error", message: "Unexpected server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { Err(c, tt.err) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.code || body.Error.Message != tt.message {
				t.Fatalf("unexpected body %+v", body.Error)
			}
		})
	}
}
