package documents

import (
	"context"
	"errors"
	"io"
	"testing"

	"hippo-backend/internal/candidates"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/storage/object/local"
)

const candidateID = "4f0c8f3e-1d2b-4c61-9a7e-0b8d2f6c1a55"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

type ownedCandidates map[string]string // candidate id -> owner

func (o ownedCandidates) Get(ctx context.Context, userID, id string) (candidates.Candidate, error) {
	if o[id] != userID {
		return candidates.Candidate{}, apperr.NotFound("candidate not found")
	}
	return candidates.Candidate{ID: id, UserID: userID}, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		Store:      local.New(t.TempDir()),
		Repo:       NewMemoryRepo(),
		Candidates: ownedCandidates{candidateID: "u1"},
	}
}

func TestUploadStoresUnderOwnerPrefix(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	doc, err := svc.Upload(ctx, "u1", KindProfileCandidate, "ignored", pngBytes)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := "users/u1/profile_candidate/" + doc.ID + ".png"
	if doc.StoragePath != want {
		t.Fatalf("expected path %s, got %s", want, doc.StoragePath)
	}
	if doc.CandidateID != "" {
		t.Fatalf("profile document must not carry a candidate id")
	}

	if _, err := svc.Upload(ctx, "u1", KindParent, "", []byte("plain text")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for text upload, got %v", err)
	}
	if _, err := svc.Upload(ctx, "u2", KindCandidate, candidateID, pngBytes); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected foreign candidate to be rejected, got %v", err)
	}
}

func TestLatestCandidateDoc(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, ok, err := svc.LatestCandidateDoc(ctx, "u1", candidates.KindProfile, "u1"); err != nil || ok {
		t.Fatalf("expected no document yet, got ok=%v err=%v", ok, err)
	}

	first, err := svc.Upload(ctx, "u1", KindCandidate, candidateID, pngBytes)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	second, err := svc.Upload(ctx, "u1", KindCandidate, candidateID, pngBytes)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	doc, ok, err := svc.LatestCandidateDoc(ctx, "u1", candidates.KindExtra, candidateID)
	if err != nil || !ok {
		t.Fatalf("expected candidate document, got ok=%v err=%v", ok, err)
	}
	if doc.ID != second.ID {
		t.Fatalf("expected newest document %s, got %s (first %s)", second.ID, doc.ID, first.ID)
	}

	if _, ok, _ := svc.LatestCandidateDoc(ctx, "u1", candidates.KindProfile, "u1"); ok {
		t.Fatalf("candidate documents must not back the profile candidate")
	}
}

func TestParentDocOwnershipAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	doc, err := svc.Upload(ctx, "u1", KindParent, "", pngBytes)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, ok, err := svc.GetParentDoc(ctx, "u2", doc.ID); err != nil || ok {
		t.Fatalf("foreign parent doc must be invisible, ok=%v err=%v", ok, err)
	}
	if _, _, err := svc.GetParentDoc(ctx, "u1", "nope"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for bad id, got %v", err)
	}
	if err := svc.DeleteParent(ctx, "u2", doc.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for foreign delete, got %v", err)
	}

	if err := svc.DeleteParent(ctx, "u1", doc.ID); err != nil {
		t.Fatalf("DeleteParent: %v", err)
	}
	if _, ok, _ := svc.GetParentDoc(ctx, "u1", doc.ID); ok {
		t.Fatalf("document should be gone")
	}
	rc, err := svc.Store.Open(ctx, doc.StoragePath)
	if err != nil {
		t.Fatalf("stored object must survive delete: %v", err)
	}
	rc.Close()
}

type failingStore struct{ *local.Store }

func (failingStore) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	return 0, errors.New("bucket unavailable")
}

func TestUploadStorageFailureIsUpstream(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	svc.Store = failingStore{local.New(t.TempDir())}

	_, err := svc.Upload(ctx, "u1", KindParent, "", pngBytes)
	if !errors.Is(err, apperr.ErrUpstream) || apperr.MessageOf(err) != "storage write failed" {
		t.Fatalf("expected upstream storage failure, got %v", err)
	}
	docs, err := svc.List(ctx, "u1", KindParent)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("failed write must not create a record, got %d", len(docs))
	}
}
