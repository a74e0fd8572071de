package candidates

import (
	"time"

	"hippo-backend/internal/shared/apperr"
)

// Kind tells where an application's candidate data comes from.
type Kind string

const (
	KindProfile Kind = "profile"
	KindExtra   Kind = "extra"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindProfile, KindExtra:
		return k, nil
	default:
		return "", apperr.Validation("candidateKind must be profile|extra")
	}
}

// Candidate is an additional person a user registers besides themselves.
type Candidate struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	FullName  string     `json:"fullName"`
	Birthdate *time.Time `json:"-"`
	RegionID  string     `json:"regionId"`
	Phone     string     `json:"phone,omitempty"`
	School    string     `json:"school,omitempty"`
	City      string     `json:"city,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Subject is the candidate an application is filed for, whichever kind it is.
type Subject struct {
	Kind        Kind
	Ref         string
	OwnerUserID string
	FullName    string
	Birthdate   *time.Time
	RegionID    string
}
