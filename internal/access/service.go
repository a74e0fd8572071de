package access

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/server/middleware"
	"hippo-backend/internal/shared/server/respond"
	"hippo-backend/internal/shared/telemetry"
)

const callerKey = "caller"

// RegionLookup confirms that a region exists before a region grant is stored.
type RegionLookup interface {
	Exists(ctx context.Context, regionID string) (bool, error)
}

// Service resolves callers into admin scopes and manages grants.
type Service struct {
	Repo        Repo
	Regions     RegionLookup
	superAdmins map[string]struct{}
}

// NewService builds a Service. superAdminIDs are treated as super admins
// regardless of stored grants.
func NewService(repo Repo, regions RegionLookup, superAdminIDs []string) *Service {
	supers := make(map[string]struct{}, len(superAdminIDs))
	for _, id := range superAdminIDs {
		if id = strings.TrimSpace(id); id != "" {
			supers[id] = struct{}{}
		}
	}
	return &Service{Repo: repo, Regions: regions, superAdmins: supers}
}

// Resolve returns the caller with its admin scope. A failed grant lookup
// yields a caller without admin rights.
func (s *Service) Resolve(ctx context.Context, userID string) Caller {
	caller := Caller{UserID: userID, Scope: Scope{RegionIDs: []string{}}}
	if userID == "" || s == nil {
		return caller
	}
	if _, ok := s.superAdmins[userID]; ok {
		caller.Scope.IsSuper = true
	}
	if s.Repo == nil {
		return caller
	}
	grants, err := s.Repo.ListGrants(ctx, userID)
	if err != nil {
		telemetry.Warn("access.resolve_failed", map[string]any{"user_id": userID, "err": err})
		return caller
	}
	scope := ScopeFromGrants(grants)
	scope.IsSuper = scope.IsSuper || caller.Scope.IsSuper
	caller.Scope = scope
	return caller
}

// ListGrants returns every grant. Super admins only.
func (s *Service) ListGrants(ctx context.Context, caller Caller) ([]Grant, error) {
	if !caller.Scope.IsSuper {
		return nil, apperr.Forbidden("Forbidden")
	}
	grants, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if grants == nil {
		grants = []Grant{}
	}
	return grants, nil
}

// Grant stores a role grant. Super admins only.
func (s *Service) Grant(ctx context.Context, caller Caller, g Grant) (Grant, error) {
	if !caller.Scope.IsSuper {
		return Grant{}, apperr.Forbidden("Forbidden")
	}
	g, err := s.validate(ctx, g)
	if err != nil {
		return Grant{}, err
	}
	if err := s.Repo.Put(ctx, g); err != nil {
		return Grant{}, err
	}
	telemetry.Info("access.granted", map[string]any{"user_id": g.UserID, "role": g.Role, "region_id": g.RegionID, "by": caller.UserID})
	return g, nil
}

// Revoke removes a role grant. Super admins only.
func (s *Service) Revoke(ctx context.Context, caller Caller, g Grant) error {
	if !caller.Scope.IsSuper {
		return apperr.Forbidden("Forbidden")
	}
	g.UserID = strings.TrimSpace(g.UserID)
	g.RegionID = strings.TrimSpace(g.RegionID)
	if g.UserID == "" {
		return apperr.Validation("userId required")
	}
	if err := s.Repo.Delete(ctx, g); err != nil {
		return err
	}
	telemetry.Info("access.revoked", map[string]any{"user_id": g.UserID, "role": g.Role, "region_id": g.RegionID, "by": caller.UserID})
	return nil
}

func (s *Service) validate(ctx context.Context, g Grant) (Grant, error) {
	g.UserID = strings.TrimSpace(g.UserID)
	g.RegionID = strings.TrimSpace(g.RegionID)
	if g.UserID == "" {
		return g, apperr.Validation("userId required")
	}
	switch g.Role {
	case RoleSuperAdmin:
		g.RegionID = ""
	case RoleRegionAdmin:
		if g.RegionID == "" {
			return g, apperr.Validation("regionId required for region_admin")
		}
		if s.Regions != nil {
			ok, err := s.Regions.Exists(ctx, g.RegionID)
			if err != nil {
				return g, err
			}
			if !ok {
				return g, apperr.NotFound("region not found")
			}
		}
	default:
		return g, apperr.Validationf("unknown role %q", g.Role)
	}
	return g, nil
}

// Middleware resolves the authenticated user into a Caller stored on the context.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := middleware.UserIDFromContext(c); userID != "" {
			c.Set(callerKey, s.Resolve(c.Request.Context(), userID))
		}
		c.Next()
	}
}

// CallerFromContext returns the caller resolved by Middleware, falling back to
// a plain user without admin scope.
func CallerFromContext(c *gin.Context) Caller {
	if c == nil {
		return Caller{}
	}
	if val, ok := c.Get(callerKey); ok {
		if caller, ok := val.(Caller); ok {
			return caller
		}
	}
	return Caller{UserID: middleware.UserIDFromContext(c), Scope: Scope{RegionIDs: []string{}}}
}

// RequireAdmin rejects callers without any admin scope.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFromContext(c)
		if caller.UserID == "" {
			respond.Err(c, apperr.Unauthenticated("Not authenticated"))
			return
		}
		if !caller.IsAdmin() {
			respond.Err(c, apperr.Forbidden("Forbidden"))
			return
		}
		c.Next()
	}
}
