package verification

import (
	"encoding/json"
	"fmt"
)

// GuardianStatus is the review state of the guardian (parent) document.
type GuardianStatus string

const (
	NotRequired GuardianStatus = "not_required"
	Pending     GuardianStatus = "pending"
	Verified    GuardianStatus = "verified"
	Rejected    GuardianStatus = "rejected"
)

// ParseGuardianStatus accepts the stored text form.
func ParseGuardianStatus(raw string) (GuardianStatus, error) {
	switch s := GuardianStatus(raw); s {
	case NotRequired, Pending, Verified, Rejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown guardian status %q", raw)
}

// GuardianStatusFromLegacy converts the nullable boolean wire form given
// whether the guardian document is required at all.
func GuardianStatusFromLegacy(v *bool, requiresGuardian bool) GuardianStatus {
	if !requiresGuardian {
		return NotRequired
	}
	switch {
	case v == nil:
		return Pending
	case *v:
		return Verified
	default:
		return Rejected
	}
}

// Legacy returns the nullable boolean form: nil unless the document is required
// and has been reviewed.
func (s GuardianStatus) Legacy() *bool {
	switch s {
	case Verified:
		v := true
		return &v
	case Rejected:
		v := false
		return &v
	}
	return nil
}

// Required reports whether the status belongs to a minor's application.
func (s GuardianStatus) Required() bool {
	return s != NotRequired && s != ""
}

// MarshalJSON writes the text form.
func (s GuardianStatus) MarshalJSON() ([]byte, error) {
	if s == "" {
		s = NotRequired
	}
	return json.Marshal(string(s))
}
