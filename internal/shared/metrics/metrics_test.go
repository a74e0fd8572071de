package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndHandler(t *testing.T) {
	before := testutil.ToFloat64(documentsUploaded.WithLabelValues("consent"))
	IncDocumentUploaded("consent")
	if got := testutil.ToFloat64(documentsUploaded.WithLabelValues("consent")); got != before+1 {
		t.Fatalf("expected counter to grow by one, got %v -> %v", before, got)
	}

	AddExported("sent", 0)
	IncApplicationCreated()
	IncVerificationUpdate("verified")
	ObserveRequest(http.MethodGet, "", http.StatusOK, 15*time.Millisecond)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{"hippo_documents_uploaded_total", "hippo_applications_created_total", "hippo_http_request_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}
