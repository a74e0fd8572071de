package applications

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/access"
)

func newTestRouter(t *testing.T, svc *Service, caller access.Caller) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("caller", caller)
		c.Next()
	})
	h := NewHandler(svc)
	h.RegisterRoutes(r.Group("/api/v1"))
	h.RegisterAdminRoutes(r.Group("/api/v1/admin"))
	return r
}

func multipartUpload(t *testing.T, fileType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := w.WriteField("fileType", fileType); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := w.CreateFormFile("file", "receipt.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestHandlerCreateUploadAndList(t *testing.T) {
	svc := newTestService(t, yearsAgo(20), stubLibrary{})
	r := newTestRouter(t, svc, owner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", bytes.NewBufferString(`{"candidateKind":"profile","candidateRef":"owner"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created Created
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.ID == "" {
		t.Fatalf("decode create: %v %s", err, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/applications/"+created.ID {
		t.Fatalf("unexpected Location %q", loc)
	}

	body, ct := multipartUpload(t, "payment", pngBytes)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+created.ID+"/files", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listed struct {
		Applications []struct {
			ID                string `json:"id"`
			Status            string `json:"status"`
			State             string `json:"state"`
			ParentDocVerified *bool  `json:"parentDocVerified"`
			Completeness      struct {
				Missing []string `json:"missing"`
			} `json:"completeness"`
		} `json:"applications"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Applications) != 1 {
		t.Fatalf("expected one application, got %d", len(listed.Applications))
	}
	got := listed.Applications[0]
	if got.Status != "missing: candidate_doc" || got.State != "pending_review" || got.ParentDocVerified != nil {
		t.Fatalf("unexpected listing %+v", got)
	}
}

func TestHandlerVerificationLocksUpload(t *testing.T) {
	svc := newTestService(t, yearsAgo(20), stubLibrary{})
	id := mustCreate(t, svc, "")

	admin := newTestRouter(t, svc, belAdmin)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/applications/"+id+"/verification",
		bytes.NewBufferString(`{"paymentVerified":true,"candidateDocVerified":true,"parentDocVerified":null}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	admin.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var rec struct {
		IsVerified bool   `json:"isVerified"`
		VerifiedBy string `json:"verifiedBy"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rec.IsVerified || rec.VerifiedBy != "adm-bel" {
		t.Fatalf("unexpected verification %+v", rec)
	}

	r := newTestRouter(t, svc, owner)
	body, ct := multipartUpload(t, "payment", pngBytes)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+id+"/files", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
	var errBody struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errBody.Error.Code != "forbidden" || errBody.Error.Message != "application already verified" {
		t.Fatalf("unexpected error body %+v", errBody)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/applications/"+id, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected locked delete 403, got %d", w.Code)
	}
}
