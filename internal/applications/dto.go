package applications

import (
	"time"

	"hippo-backend/internal/candidates"
	"hippo-backend/internal/eligibility"
	"hippo-backend/internal/shared/util"
	"hippo-backend/internal/verification"
)

type fileResponse struct {
	FileType   eligibility.DocType `json:"fileType"`
	Path       string              `json:"path"`
	MimeType   string              `json:"mimeType"`
	SizeBytes  int64               `json:"sizeBytes"`
	SourceType SourceType          `json:"sourceType"`
	SourceID   string              `json:"sourceId,omitempty"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type applicationResponse struct {
	ID                   string                      `json:"id"`
	AppNo                int64                       `json:"appNo"`
	OwnerUserID          string                      `json:"ownerUserId"`
	RegionID             string                      `json:"regionId"`
	CandidateKind        candidates.Kind             `json:"candidateKind"`
	CandidateRef         string                      `json:"candidateRef"`
	CandidateFullName    string                      `json:"candidateFullName"`
	CandidateBirthdate   string                      `json:"candidateBirthdate,omitempty"`
	PaymentVerified      bool                        `json:"paymentVerified"`
	CandidateDocVerified bool                        `json:"candidateDocVerified"`
	ParentDocVerified    *bool                       `json:"parentDocVerified"`
	ParentDocStatus      verification.GuardianStatus `json:"parentDocStatus"`
	VerifiedAt           *time.Time                  `json:"verifiedAt"`
	VerifiedBy           string                      `json:"verifiedBy,omitempty"`
	ExportedAt           *time.Time                  `json:"exportedAt,omitempty"`
	ExportedCount        int                         `json:"exportedCount,omitempty"`
	CreatedAt            time.Time                   `json:"createdAt"`
	RequiresParentDoc    bool                        `json:"requiresParentDoc"`
	Completeness         eligibility.Completeness    `json:"completeness"`
	IsVerified           bool                        `json:"isVerified"`
	Locked               bool                        `json:"locked"`
	State                verification.State          `json:"state"`
	Status               string                      `json:"status"`
	Files                []fileResponse              `json:"files,omitempty"`
}

func toResponse(v View) applicationResponse {
	resp := applicationResponse{
		ID:                   v.ID,
		AppNo:                v.AppNo,
		OwnerUserID:          v.OwnerUserID,
		RegionID:             v.RegionID,
		CandidateKind:        v.CandidateKind,
		CandidateRef:         v.CandidateRef,
		CandidateFullName:    v.CandidateFullName,
		CandidateBirthdate:   util.FormatDate(v.CandidateBirthdate),
		PaymentVerified:      v.Payment,
		CandidateDocVerified: v.CandidateDoc,
		ParentDocVerified:    v.Parent.Legacy(),
		ParentDocStatus:      v.Parent,
		VerifiedAt:           v.VerifiedAt,
		VerifiedBy:           v.VerifiedBy,
		ExportedAt:           v.ExportedAt,
		ExportedCount:        v.ExportedCount,
		CreatedAt:            v.CreatedAt,
		RequiresParentDoc:    v.RequiresGuardian,
		Completeness:         v.Completeness,
		IsVerified:           v.IsVerified,
		Locked:               v.Locked,
		State:                v.State,
		Status:               v.Status,
	}
	for _, f := range v.Files {
		resp.Files = append(resp.Files, fileResponse{
			FileType:   f.FileType,
			Path:       f.StoragePath,
			MimeType:   f.MimeType,
			SizeBytes:  f.SizeBytes,
			SourceType: f.SourceType,
			SourceID:   f.SourceID,
			UpdatedAt:  f.UpdatedAt,
		})
	}
	return resp
}

func toListResponse(views []View) []applicationResponse {
	out := make([]applicationResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toResponse(v))
	}
	return out
}

type verificationResponse struct {
	ID                   string                      `json:"id"`
	PaymentVerified      bool                        `json:"paymentVerified"`
	CandidateDocVerified bool                        `json:"candidateDocVerified"`
	ParentDocVerified    *bool                       `json:"parentDocVerified"`
	ParentDocStatus      verification.GuardianStatus `json:"parentDocStatus"`
	VerifiedAt           *time.Time                  `json:"verifiedAt"`
	VerifiedBy           string                      `json:"verifiedBy,omitempty"`
	IsVerified           bool                        `json:"isVerified"`
	State                verification.State          `json:"state"`
}

func toVerificationResponse(id string, r VerificationResult) verificationResponse {
	return verificationResponse{
		ID:                   id,
		PaymentVerified:      r.Record.Payment,
		CandidateDocVerified: r.Record.CandidateDoc,
		ParentDocVerified:    r.Record.Parent.Legacy(),
		ParentDocStatus:      r.Record.Parent,
		VerifiedAt:           r.Record.VerifiedAt,
		VerifiedBy:           r.Record.VerifiedBy,
		IsVerified:           verification.IsVerified(r.Record.Flags, r.RequiresGuardian),
		State:                r.To,
	}
}
