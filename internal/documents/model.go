package documents

import (
	"time"

	"hippo-backend/internal/shared/apperr"
)

// Kind classifies a library document.
type Kind string

const (
	KindProfileCandidate Kind = "profile_candidate"
	KindCandidate        Kind = "candidate"
	KindParent           Kind = "parent"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindProfileCandidate, KindCandidate, KindParent:
		return k, nil
	default:
		return "", apperr.Validationf("unknown document kind %q", raw)
	}
}

// Document is an identity document a user uploads once and applications
// snapshot by storage path.
type Document struct {
	ID          string
	UserID      string
	Kind        Kind
	CandidateID string
	StoragePath string
	MimeType    string
	SizeBytes   int64
	CreatedAt   time.Time
}
