package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/auth"
	"hippo-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	identityKey = "identity"

	devUserHeader = "X-User-Id"
)

// Identity is who the request acts as. Dev is set when it came from the
// X-User-Id header rather than a session token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Dev    bool
}

// Auth resolves the caller from a bearer session token. With env dev or
// local an X-User-Id header stands in when no token is sent. Public routes
// pass through without identity.
func Auth(env string) gin.HandlerFunc {
	devHeader := env == "dev" || env == "local"
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || isPublic(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		id, ok := identityFromRequest(c.Request, devHeader)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
			return
		}
		c.Set(identityKey, id)
		c.Set(userIDKey, id.UserID)
		c.Next()
	}
}

func identityFromRequest(r *http.Request, devHeader bool) (Identity, bool) {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return Identity{}, false
		}
		claims, err := auth.VerifyJWT(strings.TrimSpace(token))
		if err != nil {
			return Identity{}, false
		}
		return Identity{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}, true
	}
	if devHeader {
		if userID := strings.TrimSpace(r.Header.Get(devUserHeader)); userID != "" {
			return Identity{UserID: userID, Dev: true}, true
		}
	}
	return Identity{}, false
}

// isPublic reports routes reachable without identity. Region reads are
// public so the registration form can list them; region writes are not.
func isPublic(method, path string) bool {
	switch {
	case strings.HasPrefix(path, "/api/v1/auth/google/"), path == "/api/v1/health", path == "/metrics":
		return true
	case path == "/api/v1/regions", strings.HasPrefix(path, "/api/v1/regions/"):
		return method == http.MethodGet
	}
	return false
}

// IdentityFromContext returns the identity stored by Auth.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	if c == nil {
		return Identity{}, false
	}
	val, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
