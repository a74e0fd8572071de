package applications

import (
	"time"

	"hippo-backend/internal/candidates"
	"hippo-backend/internal/eligibility"
	"hippo-backend/internal/verification"
)

// SourceType records where an application file came from.
type SourceType string

const (
	SourceManual           SourceType = "manual"
	SourceProfileCandidate SourceType = "profile_candidate"
	SourceCandidate        SourceType = "candidate"
	SourceParentProfile    SourceType = "parent_profile"
)

// Application is one registration of a candidate in a region. Owner, region
// and candidate never change after creation.
type Application struct {
	ID                 string
	AppNo              int64
	OwnerUserID        string
	RegionID           string
	CandidateKind      candidates.Kind
	CandidateRef       string
	CandidateFullName  string
	CandidateBirthdate *time.Time
	verification.Record
	ExportedAt    *time.Time
	ExportedBy    string
	ExportedCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// File is the single document of one type attached to an application.
type File struct {
	ID            string
	ApplicationID string
	FileType      eligibility.DocType
	StoragePath   string
	MimeType      string
	SizeBytes     int64
	SourceType    SourceType
	SourceID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// View is an application annotated with its derived review state.
type View struct {
	Application
	Files            []File
	RequiresGuardian bool
	Completeness     eligibility.Completeness
	IsVerified       bool
	Locked           bool
	State            verification.State
	Status           string
}

// Filter selects applications for listings. AnyRegion lifts the region
// restriction; otherwise only RegionIDs match.
type Filter struct {
	OwnerUserID string
	AnyRegion   bool
	RegionIDs   []string
	IDs         []string
	Limit       int
}
