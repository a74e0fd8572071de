package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"hippo-backend/internal/shared/auth"
	"hippo-backend/internal/shared/telemetry"
)

func newAuthRouter(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(env))
	echo := func(c *gin.Context) {
		id, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "email": id.Email, "dev": id.Dev})
	}
	router.GET("/api/v1/applications", echo)
	router.GET("/api/v1/regions", echo)
	router.POST("/api/v1/regions", echo)
	router.GET("/api/v1/regions/:id/qr", echo)
	router.OPTIONS("/api/v1/applications", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := newAuthRouter("dev")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/applications", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := auth.SignJWT(auth.Claims{Email: "p@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	router := newAuthRouter("production")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		Dev    bool   `json:"dev"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.UserID != "user-1" || body.Email != "p@example.com" || body.Dev {
		t.Fatalf("unexpected identity %+v", body)
	}
}

func TestAuthRejectsMissingOrBadIdentity(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	router := newAuthRouter("production")

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		req.Header.Set("X-User-Id", "user-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.Code)
		}
	}
}

func TestAuthDevHeaderOnlyInDev(t *testing.T) {
	router := newAuthRouter("dev")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 in dev, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"dev":true`) {
		t.Fatalf("expected dev identity, got %s", resp.Body.String())
	}
}

func TestAuthPublicRegionReadsOnly(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	router := newAuthRouter("production")

	for _, path := range []string{"/api/v1/regions", "/api/v1/regions/bel/qr"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s expected 200, got %d", path, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/regions", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("POST regions expected 401, got %d", resp.Code)
	}
}
