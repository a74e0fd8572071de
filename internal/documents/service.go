package documents

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"hippo-backend/internal/candidates"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/filecheck"
	"hippo-backend/internal/shared/storage/object"
	"hippo-backend/internal/shared/telemetry"
	"hippo-backend/internal/shared/util"
)

// CandidateLookup returns a candidate owned by the given user.
type CandidateLookup interface {
	Get(ctx context.Context, userID, id string) (candidates.Candidate, error)
}

// Service contains business logic for library documents.
type Service struct {
	Store      object.ObjectStore
	Repo       DocumentsRepo
	Candidates CandidateLookup
}

// Upload validates data, stores it under the owner's namespace and records it.
// candidateID is required for KindCandidate and ignored otherwise.
func (s *Service) Upload(ctx context.Context, userID string, kind Kind, candidateID string, data []byte) (Document, error) {
	if strings.TrimSpace(userID) == "" {
		return Document{}, apperr.Unauthenticated("Not authenticated")
	}
	if kind == KindCandidate {
		if _, err := s.Candidates.Get(ctx, userID, candidateID); err != nil {
			return Document{}, err
		}
	} else {
		candidateID = ""
	}

	info, err := filecheck.Inspect(data, filecheck.LibraryRules)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        kind,
		CandidateID: candidateID,
		MimeType:    info.Mime,
		SizeBytes:   info.Size,
		CreatedAt:   time.Now().UTC(),
	}
	doc.StoragePath = util.LibraryDocumentKey(userID, string(kind), doc.ID, info.Ext)

	if _, err := s.Store.Put(ctx, doc.StoragePath, info.Mime, bytes.NewReader(data)); err != nil {
		return Document{}, apperr.Upstream("storage write failed", err)
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	telemetry.Info("documents.uploaded", map[string]any{
		"user_id":     userID,
		"document_id": doc.ID,
		"kind":        kind,
		"size":        doc.SizeBytes,
	})
	return doc, nil
}

func (s *Service) List(ctx context.Context, userID string, kind Kind) ([]Document, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	return s.Repo.List(ctx, userID, kind)
}

// DeleteParent removes a guardian document record. The stored object is kept
// because applications may still reference its path.
func (s *Service) DeleteParent(ctx context.Context, userID, id string) error {
	doc, ok, err := s.GetParentDoc(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("document not found")
	}
	if err := s.Repo.Delete(ctx, userID, doc.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "document not found", err)
		}
		return err
	}
	telemetry.Info("documents.parent_deleted", map[string]any{"user_id": userID, "document_id": id})
	return nil
}

// LatestCandidateDoc returns the newest identity document backing a candidate.
func (s *Service) LatestCandidateDoc(ctx context.Context, ownerID string, kind candidates.Kind, ref string) (Document, bool, error) {
	var (
		doc Document
		err error
	)
	switch kind {
	case candidates.KindProfile:
		doc, err = s.Repo.Latest(ctx, ownerID, KindProfileCandidate, "")
	case candidates.KindExtra:
		doc, err = s.Repo.Latest(ctx, ownerID, KindCandidate, ref)
	default:
		return Document{}, false, nil
	}
	if errors.Is(err, ErrNotFound) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

// GetParentDoc returns the guardian document id if ownerID owns it.
func (s *Service) GetParentDoc(ctx context.Context, ownerID, id string) (Document, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, false, apperr.Validation("parentDocId must be uuid")
	}
	doc, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, err
	}
	if doc.UserID != ownerID || doc.Kind != KindParent {
		return Document{}, false, nil
	}
	return doc, true, nil
}
