package access

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/telemetry"
)

type failingRepo struct{ MemoryRepo }

func (failingRepo) ListGrants(ctx context.Context, userID string) ([]Grant, error) {
	return nil, errors.New("db down")
}

type fakeRegions map[string]bool

func (f fakeRegions) Exists(ctx context.Context, id string) (bool, error) { return f[id], nil }

func TestResolveBuildsScope(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.Put(ctx, Grant{UserID: "u1", Role: RoleRegionAdmin, RegionID: "kur"})
	repo.Put(ctx, Grant{UserID: "u1", Role: RoleRegionAdmin, RegionID: "bel"})
	svc := NewService(repo, nil, []string{"root"})

	caller := svc.Resolve(ctx, "u1")
	if caller.Scope.IsSuper {
		t.Fatalf("u1 must not be super")
	}
	if len(caller.Scope.RegionIDs) != 2 || caller.Scope.RegionIDs[0] != "bel" {
		t.Fatalf("unexpected regions %v", caller.Scope.RegionIDs)
	}
	if !caller.Scope.CoversRegion("kur") || caller.Scope.CoversRegion("vor") {
		t.Fatalf("unexpected coverage for %v", caller.Scope)
	}

	root := svc.Resolve(ctx, "root")
	if !root.Scope.IsSuper || !root.Scope.CoversRegion("anything") {
		t.Fatalf("expected configured super admin")
	}

	nobody := svc.Resolve(ctx, "u2")
	if nobody.IsAdmin() {
		t.Fatalf("u2 must not be admin")
	}
}

func TestResolveDegradesOnLookupFailure(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	svc := NewService(&failingRepo{}, nil, nil)
	caller := svc.Resolve(context.Background(), "u1")
	if caller.IsAdmin() {
		t.Fatalf("expected no admin scope when lookup fails")
	}
	if caller.UserID != "u1" {
		t.Fatalf("expected user id to survive, got %q", caller.UserID)
	}
}

func TestGrantValidation(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	ctx := context.Background()
	svc := NewService(NewMemoryRepo(), fakeRegions{"bel": true}, nil)
	super := Caller{UserID: "root", Scope: Scope{IsSuper: true}}

	if _, err := svc.Grant(ctx, Caller{UserID: "u1"}, Grant{UserID: "u2", Role: RoleSuperAdmin}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for non-super, got %v", err)
	}
	if _, err := svc.Grant(ctx, super, Grant{UserID: "u2", Role: RoleRegionAdmin}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for missing region, got %v", err)
	}
	if _, err := svc.Grant(ctx, super, Grant{UserID: "u2", Role: RoleRegionAdmin, RegionID: "zzz"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown region, got %v", err)
	}
	if _, err := svc.Grant(ctx, super, Grant{UserID: "u2", Role: "owner"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for unknown role, got %v", err)
	}

	g, err := svc.Grant(ctx, super, Grant{UserID: "u2", Role: RoleSuperAdmin, RegionID: "bel"})
	if err != nil {
		t.Fatalf("grant super: %v", err)
	}
	if g.RegionID != "" {
		t.Fatalf("super grant must drop region, got %q", g.RegionID)
	}
	if !svc.Resolve(ctx, "u2").Scope.IsSuper {
		t.Fatalf("expected u2 to be super after grant")
	}

	if err := svc.Revoke(ctx, super, Grant{UserID: "u2", Role: RoleSuperAdmin}); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if svc.Resolve(ctx, "u2").IsAdmin() {
		t.Fatalf("expected u2 to lose admin after revoke")
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer telemetry.SetOutput(io.Discard)()
	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.Put(ctx, Grant{UserID: "admin", Role: RoleRegionAdmin, RegionID: "bel"})
	svc := NewService(repo, nil, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User-Id"); id != "" {
			c.Set("userId", id)
		}
		c.Next()
	}, svc.Middleware())
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, CallerFromContext(c).Scope)
	})

	cases := map[string]int{"": http.StatusUnauthorized, "user": http.StatusForbidden, "admin": http.StatusOK}
	for user, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if user != "" {
			req.Header.Set("X-User-Id", user)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("user %q: expected %d, got %d", user, want, w.Code)
		}
	}
}
