package access

import (
	"slices"
	"time"
)

// Role is an administrative role.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleRegionAdmin Role = "region_admin"
)

// Grant assigns a role to a user. RegionID is set only for region admins.
type Grant struct {
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	RegionID  string    `json:"regionId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Scope is the administrative reach of a user.
type Scope struct {
	IsSuper   bool     `json:"isSuper"`
	RegionIDs []string `json:"regionIds"`
}

// IsAdmin reports whether the scope grants any admin access.
func (s Scope) IsAdmin() bool {
	return s.IsSuper || len(s.RegionIDs) > 0
}

// CoversRegion reports whether an admin with this scope may act on regionID.
func (s Scope) CoversRegion(regionID string) bool {
	if s.IsSuper {
		return true
	}
	return regionID != "" && slices.Contains(s.RegionIDs, regionID)
}

// ScopeFromGrants folds grants into a scope.
func ScopeFromGrants(grants []Grant) Scope {
	scope := Scope{RegionIDs: []string{}}
	for _, g := range grants {
		switch g.Role {
		case RoleSuperAdmin:
			scope.IsSuper = true
		case RoleRegionAdmin:
			if g.RegionID != "" && !slices.Contains(scope.RegionIDs, g.RegionID) {
				scope.RegionIDs = append(scope.RegionIDs, g.RegionID)
			}
		}
	}
	slices.Sort(scope.RegionIDs)
	return scope
}

// Caller is the explicit identity passed into every service operation.
type Caller struct {
	UserID string
	Scope  Scope
}

// IsAdmin reports whether the caller has any admin scope.
func (c Caller) IsAdmin() bool {
	return c.Scope.IsAdmin()
}
