// Package verification holds the application review state machine and the
// guards that protect verified applications from owner changes.
package verification

import (
	"time"

	"hippo-backend/internal/eligibility"
)

// Flags are the admin-controlled review flags of an application.
type Flags struct {
	Payment      bool           `json:"paymentVerified"`
	CandidateDoc bool           `json:"candidateDocVerified"`
	Parent       GuardianStatus `json:"parentDoc"`
}

// Record is the persisted verification state. VerifiedAt and VerifiedBy are
// either both set or both empty.
type Record struct {
	Flags
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	VerifiedBy string     `json:"verifiedBy,omitempty"`
}

// Request is an admin's submitted flags. Parent uses the nullable wire form.
type Request struct {
	Payment      bool
	CandidateDoc bool
	Parent       *bool
}

// State is the derived lifecycle state.
type State string

const (
	Draft         State = "draft"
	PendingReview State = "pending_review"
	StateVerified State = "verified"
)

// IsVerified reports whether every required flag is exactly true.
func IsVerified(f Flags, requiresGuardian bool) bool {
	if !f.Payment || !f.CandidateDoc {
		return false
	}
	if requiresGuardian {
		return f.Parent == Verified
	}
	return true
}

// IsLocked reports whether owner mutations are frozen. A verified flag set
// locks even when the VerifiedAt write did not happen.
func IsLocked(r Record, requiresGuardian bool) bool {
	return r.VerifiedAt != nil || IsVerified(r.Flags, requiresGuardian)
}

// StateOf derives the lifecycle state from the record and uploaded files.
func StateOf(r Record, requiresGuardian bool, uploaded eligibility.DocSet) State {
	if IsLocked(r, requiresGuardian) {
		return StateVerified
	}
	if uploaded.Len() == 0 {
		return Draft
	}
	return PendingReview
}

// ResolveUpdate applies an admin's requested flags to current. The result
// carries VerifiedAt/VerifiedBy iff the requested flags are fully verified.
// Resubmitting the same flags leaves an existing verification untouched.
func ResolveUpdate(current Record, req Request, requiresGuardian bool, admin string, now time.Time) Record {
	next := Record{Flags: Flags{
		Payment:      req.Payment,
		CandidateDoc: req.CandidateDoc,
		Parent:       GuardianStatusFromLegacy(req.Parent, requiresGuardian),
	}}
	if !IsVerified(next.Flags, requiresGuardian) {
		return next
	}
	if current.VerifiedAt != nil {
		at := *current.VerifiedAt
		next.VerifiedAt = &at
		next.VerifiedBy = current.VerifiedBy
		return next
	}
	at := now.UTC()
	next.VerifiedAt = &at
	next.VerifiedBy = admin
	return next
}

// InitialRecord is the state of a freshly created application.
func InitialRecord(requiresGuardian bool) Record {
	parent := NotRequired
	if requiresGuardian {
		parent = Pending
	}
	return Record{Flags: Flags{Parent: parent}}
}
