package verification

import "hippo-backend/internal/shared/apperr"

// MsgLocked is returned when an owner tries to change a verified application.
const MsgLocked = "application already verified"

// Scope is the admin reach of a caller.
type Scope interface {
	CoversRegion(regionID string) bool
}

// CheckOwnerMutation guards delete and upload. Ownership is checked first so
// that strangers learn nothing about lock state.
func CheckOwnerMutation(callerID, ownerID string, locked bool) error {
	if callerID == "" {
		return apperr.Unauthenticated("Not authenticated")
	}
	if callerID != ownerID {
		return apperr.Forbidden("Forbidden")
	}
	if locked {
		return apperr.Forbidden(MsgLocked)
	}
	return nil
}

// CheckAdminScope guards verification updates. There is no lock check: an
// admin may reopen a verified application.
func CheckAdminScope(scope Scope, regionID string) error {
	if scope == nil || !scope.CoversRegion(regionID) {
		return apperr.Forbidden("Forbidden")
	}
	return nil
}
