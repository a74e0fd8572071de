package applications

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"hippo-backend/internal/access"
	"hippo-backend/internal/candidates"
	"hippo-backend/internal/documents"
	"hippo-backend/internal/eligibility"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/filecheck"
	"hippo-backend/internal/shared/metrics"
	"hippo-backend/internal/shared/storage/object"
	"hippo-backend/internal/shared/telemetry"
	"hippo-backend/internal/shared/util"
	"hippo-backend/internal/verification"
)

const (
	adminListLimit = 200
	exportLimit    = 800
)

// CandidateResolver loads the subject an application is filed for.
type CandidateResolver interface {
	Resolve(ctx context.Context, ownerID string, kind candidates.Kind, ref string) (candidates.Subject, error)
}

// LibraryDocs provides the documents snapshotted into new applications.
type LibraryDocs interface {
	LatestCandidateDoc(ctx context.Context, ownerID string, kind candidates.Kind, ref string) (documents.Document, bool, error)
	GetParentDoc(ctx context.Context, ownerID, id string) (documents.Document, bool, error)
}

type Service struct {
	Repo        Repo
	Store       object.ObjectStore
	Candidates  CandidateResolver
	Library     LibraryDocs
	Eligibility eligibility.Evaluator
	now         func() time.Time
}

func NewService(repo Repo, store object.ObjectStore, cands CandidateResolver, library LibraryDocs, ev eligibility.Evaluator) *Service {
	return &Service{
		Repo:        repo,
		Store:       store,
		Candidates:  cands,
		Library:     library,
		Eligibility: ev,
		now:         time.Now,
	}
}

// RequiresGuardian evaluates the guardian rule at the application's creation instant.
func (s *Service) RequiresGuardian(app Application) bool {
	return s.Eligibility.RequiresGuardianDocument(app.CandidateBirthdate, app.CreatedAt)
}

// CreateInput is the owner's request to open an application.
type CreateInput struct {
	CandidateKind string
	CandidateRef  string
	ParentDocID   string
}

// Created reports the new application and any snapshot that could not be attached.
type Created struct {
	ID       string   `json:"id"`
	AppNo    int64    `json:"appNo"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Service) Create(ctx context.Context, caller access.Caller, in CreateInput) (Created, error) {
	if caller.UserID == "" {
		return Created{}, apperr.Unauthenticated("Not authenticated")
	}
	kind, err := candidates.ParseKind(strings.TrimSpace(in.CandidateKind))
	if err != nil {
		return Created{}, err
	}
	parentDocID := strings.TrimSpace(in.ParentDocID)
	if parentDocID != "" {
		if _, err := uuid.Parse(parentDocID); err != nil {
			return Created{}, apperr.Validation("parentDocId must be uuid")
		}
	}

	subj, err := s.Candidates.Resolve(ctx, caller.UserID, kind, in.CandidateRef)
	if err != nil {
		return Created{}, err
	}
	if subj.RegionID == "" {
		return Created{}, apperr.Validation("region missing")
	}

	now := s.now().UTC()
	requires := s.Eligibility.RequiresGuardianDocument(subj.Birthdate, now)
	app, err := s.Repo.Create(ctx, Application{
		ID:                 uuid.NewString(),
		OwnerUserID:        caller.UserID,
		RegionID:           subj.RegionID,
		CandidateKind:      subj.Kind,
		CandidateRef:       subj.Ref,
		CandidateFullName:  subj.FullName,
		CandidateBirthdate: subj.Birthdate,
		Record:             verification.InitialRecord(requires),
		CreatedAt:          now,
	})
	if err != nil {
		return Created{}, err
	}
	metrics.IncApplicationCreated()

	out := Created{ID: app.ID, AppNo: app.AppNo}
	if warn := s.attachCandidateDoc(ctx, app, subj); warn != "" {
		out.Warnings = append(out.Warnings, warn)
	}
	if requires && parentDocID != "" {
		if warn := s.attachParentDoc(ctx, app, parentDocID); warn != "" {
			out.Warnings = append(out.Warnings, warn)
		}
	}

	telemetry.Info("applications.created", map[string]any{
		"application_id":    app.ID,
		"user_id":           caller.UserID,
		"region_id":         app.RegionID,
		"candidate_kind":    app.CandidateKind,
		"requires_guardian": requires,
		"warnings":          len(out.Warnings),
	})
	return out, nil
}

func (s *Service) attachCandidateDoc(ctx context.Context, app Application, subj candidates.Subject) string {
	doc, ok, err := s.Library.LatestCandidateDoc(ctx, app.OwnerUserID, subj.Kind, subj.Ref)
	if err != nil {
		telemetry.Warn("applications.snapshot_failed", map[string]any{"application_id": app.ID, "file_type": eligibility.DocCandidate, "err": err})
		return "candidate document not attached"
	}
	if !ok {
		return ""
	}
	source := SourceProfileCandidate
	if subj.Kind == candidates.KindExtra {
		source = SourceCandidate
	}
	if err := s.Repo.UpsertFile(ctx, snapshotFile(app.ID, eligibility.DocCandidate, doc, source)); err != nil {
		telemetry.Warn("applications.snapshot_failed", map[string]any{"application_id": app.ID, "file_type": eligibility.DocCandidate, "err": err})
		return "candidate document not attached"
	}
	return ""
}

func (s *Service) attachParentDoc(ctx context.Context, app Application, parentDocID string) string {
	doc, ok, err := s.Library.GetParentDoc(ctx, app.OwnerUserID, parentDocID)
	if err != nil {
		telemetry.Warn("applications.snapshot_failed", map[string]any{"application_id": app.ID, "file_type": eligibility.DocParent, "err": err})
		return "parent document not attached"
	}
	if !ok {
		return "parent document not found"
	}
	if err := s.Repo.UpsertFile(ctx, snapshotFile(app.ID, eligibility.DocParent, doc, SourceParentProfile)); err != nil {
		telemetry.Warn("applications.snapshot_failed", map[string]any{"application_id": app.ID, "file_type": eligibility.DocParent, "err": err})
		return "parent document not attached"
	}
	return ""
}

func snapshotFile(appID string, ft eligibility.DocType, doc documents.Document, source SourceType) File {
	return File{
		ApplicationID: appID,
		FileType:      ft,
		StoragePath:   doc.StoragePath,
		MimeType:      doc.MimeType,
		SizeBytes:     doc.SizeBytes,
		SourceType:    source,
		SourceID:      doc.ID,
	}
}

// Upload stores an owner's file for one document slot of an unlocked application.
func (s *Service) Upload(ctx context.Context, caller access.Caller, appID, fileType string, data []byte) (File, error) {
	ft, err := eligibility.ParseDocType(strings.TrimSpace(fileType))
	if err != nil {
		return File{}, err
	}
	app, err := s.load(ctx, appID)
	if err != nil {
		return File{}, err
	}
	locked := verification.IsLocked(app.Record, s.RequiresGuardian(app))
	if err := verification.CheckOwnerMutation(caller.UserID, app.OwnerUserID, locked); err != nil {
		return File{}, err
	}

	info, err := filecheck.Inspect(data, filecheck.ApplicationRules)
	if err != nil {
		return File{}, err
	}
	key := util.ApplicationFileKey(app.OwnerUserID, app.ID, string(ft), info.Ext)
	if _, err := s.Store.Put(ctx, key, info.Mime, bytes.NewReader(data)); err != nil {
		return File{}, apperr.Upstream("storage write failed", err)
	}
	f := File{
		ApplicationID: app.ID,
		FileType:      ft,
		StoragePath:   key,
		MimeType:      info.Mime,
		SizeBytes:     info.Size,
		SourceType:    SourceManual,
	}
	if err := s.Repo.UpsertFile(ctx, f); err != nil {
		return File{}, err
	}
	metrics.IncDocumentUploaded(string(ft))
	telemetry.Info("applications.file_uploaded", map[string]any{
		"application_id": app.ID,
		"user_id":        caller.UserID,
		"file_type":      ft,
		"size":           info.Size,
	})
	return f, nil
}

// Delete removes an owner's unlocked application.
func (s *Service) Delete(ctx context.Context, caller access.Caller, appID string) error {
	app, err := s.load(ctx, appID)
	if err != nil {
		return err
	}
	locked := verification.IsLocked(app.Record, s.RequiresGuardian(app))
	if err := verification.CheckOwnerMutation(caller.UserID, app.OwnerUserID, locked); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, app.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "application not found", err)
		}
		return err
	}
	telemetry.Info("applications.deleted", map[string]any{"application_id": app.ID, "user_id": caller.UserID})
	return nil
}

// VerificationResult is the record after an admin update and the state change it caused.
type VerificationResult struct {
	Record           verification.Record
	RequiresGuardian bool
	From             verification.State
	To               verification.State
}

// Transition renders the state change for logs.
func (r VerificationResult) Transition() string {
	return string(r.From) + "->" + string(r.To)
}

// UpdateVerification applies an admin's flags. Admins may reopen verified applications.
func (s *Service) UpdateVerification(ctx context.Context, caller access.Caller, appID string, req verification.Request) (VerificationResult, error) {
	if caller.UserID == "" {
		return VerificationResult{}, apperr.Unauthenticated("Not authenticated")
	}
	if !caller.IsAdmin() {
		return VerificationResult{}, apperr.Forbidden("Forbidden")
	}
	app, err := s.load(ctx, appID)
	if err != nil {
		return VerificationResult{}, err
	}
	if err := verification.CheckAdminScope(caller.Scope, app.RegionID); err != nil {
		return VerificationResult{}, err
	}
	files, err := s.Repo.ListFiles(ctx, []string{app.ID})
	if err != nil {
		return VerificationResult{}, err
	}
	uploaded := docSet(files)

	requires := s.RequiresGuardian(app)
	next := verification.ResolveUpdate(app.Record, req, requires, caller.UserID, s.now())
	if err := s.Repo.UpdateVerification(ctx, app.ID, next); err != nil {
		if errors.Is(err, ErrNotFound) {
			return VerificationResult{}, apperr.Wrap(apperr.ErrNotFound, "application not found", err)
		}
		return VerificationResult{}, err
	}

	res := VerificationResult{
		Record:           next,
		RequiresGuardian: requires,
		From:             verification.StateOf(app.Record, requires, uploaded),
		To:               verification.StateOf(next, requires, uploaded),
	}
	metrics.IncVerificationUpdate(outcome(res))
	telemetry.Info("applications.verification_updated", map[string]any{
		"application_id":    app.ID,
		"admin_id":          caller.UserID,
		"status_transition": res.Transition(),
		"parent_doc":        next.Parent,
	})
	return res, nil
}

func outcome(r VerificationResult) string {
	switch {
	case r.From != verification.StateVerified && r.To == verification.StateVerified:
		return "verified"
	case r.From == verification.StateVerified && r.To != verification.StateVerified:
		return "reopened"
	default:
		return "updated"
	}
}

// List returns the caller's own applications with their derived state.
func (s *Service) List(ctx context.Context, caller access.Caller) ([]View, error) {
	if caller.UserID == "" {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	apps, err := s.Repo.List(ctx, Filter{OwnerUserID: caller.UserID, AnyRegion: true})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, apps, false)
}

// AdminList returns applications in the caller's admin scope, optionally narrowed to one region.
func (s *Service) AdminList(ctx context.Context, caller access.Caller, regionID string) ([]View, error) {
	f, err := adminFilter(caller, regionID)
	if err != nil {
		return nil, err
	}
	f.Limit = adminListLimit
	apps, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, apps, false)
}

func adminFilter(caller access.Caller, regionID string) (Filter, error) {
	if caller.UserID == "" {
		return Filter{}, apperr.Unauthenticated("Not authenticated")
	}
	if !caller.IsAdmin() {
		return Filter{}, apperr.Forbidden("Forbidden")
	}
	regionID = strings.TrimSpace(regionID)
	if regionID != "" && regionID != "all" {
		if !caller.Scope.CoversRegion(regionID) {
			return Filter{}, apperr.Forbidden("Forbidden")
		}
		return Filter{RegionIDs: []string{regionID}}, nil
	}
	if caller.Scope.IsSuper {
		return Filter{AnyRegion: true}, nil
	}
	return Filter{RegionIDs: caller.Scope.RegionIDs}, nil
}

// Get returns one application with files. Only the owner and admins of its
// region can see it.
func (s *Service) Get(ctx context.Context, caller access.Caller, appID string) (View, error) {
	app, err := s.visible(ctx, caller, appID)
	if err != nil {
		return View{}, err
	}
	views, err := s.views(ctx, []Application{app}, true)
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// CanViewFile allows access to path when it is attached to an application the caller can see.
func (s *Service) CanViewFile(ctx context.Context, caller access.Caller, appID, path string) error {
	app, err := s.visible(ctx, caller, appID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Forbidden("Forbidden")
		}
		return err
	}
	if _, err := s.Repo.FileByPath(ctx, app.ID, path); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.Forbidden("Forbidden")
		}
		return err
	}
	return nil
}

// ExportSelection names the applications an admin wants exported.
type ExportSelection struct {
	RegionID string
	IDs      []string
}

// SelectForExport returns the scoped applications and their files, newest first.
func (s *Service) SelectForExport(ctx context.Context, caller access.Caller, sel ExportSelection) ([]Application, []File, error) {
	f, err := adminFilter(caller, sel.RegionID)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range sel.IDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, nil, apperr.Validationf("invalid application id %q", id)
		}
	}
	f.IDs = sel.IDs
	f.Limit = exportLimit
	apps, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if len(apps) == 0 {
		return nil, nil, apperr.Validation("No applications found")
	}
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	files, err := s.Repo.ListFiles(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return apps, files, nil
}

// RecordExport stamps exported applications and their per-application file counts.
func (s *Service) RecordExport(ctx context.Context, caller access.Caller, ids []string, counts map[string]int) error {
	if err := s.Repo.MarkExported(ctx, ids, caller.UserID, s.now().UTC()); err != nil {
		return err
	}
	return s.Repo.SetExportCount(ctx, counts)
}

func (s *Service) load(ctx context.Context, appID string) (Application, error) {
	if _, err := uuid.Parse(appID); err != nil {
		return Application{}, apperr.Validation("application id must be uuid")
	}
	app, err := s.Repo.Get(ctx, appID)
	if errors.Is(err, ErrNotFound) {
		return Application{}, apperr.Wrap(apperr.ErrNotFound, "application not found", err)
	}
	return app, err
}

func (s *Service) visible(ctx context.Context, caller access.Caller, appID string) (Application, error) {
	if caller.UserID == "" {
		return Application{}, apperr.Unauthenticated("Not authenticated")
	}
	app, err := s.load(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	if app.OwnerUserID != caller.UserID && !caller.Scope.CoversRegion(app.RegionID) {
		return Application{}, apperr.NotFound("application not found")
	}
	return app, nil
}

func (s *Service) views(ctx context.Context, apps []Application, withFiles bool) ([]View, error) {
	out := make([]View, 0, len(apps))
	if len(apps) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	files, err := s.Repo.ListFiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	byApp := make(map[string][]File, len(apps))
	for _, f := range files {
		byApp[f.ApplicationID] = append(byApp[f.ApplicationID], f)
	}
	for _, app := range apps {
		v := s.annotate(app, byApp[app.ID])
		if !withFiles {
			v.Files = nil
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) annotate(app Application, files []File) View {
	requires := s.RequiresGuardian(app)
	uploaded := docSet(files)
	v := View{
		Application:      app,
		Files:            files,
		RequiresGuardian: requires,
		Completeness:     eligibility.EvaluateCompleteness(uploaded, requires),
		IsVerified:       verification.IsVerified(app.Flags, requires),
		Locked:           verification.IsLocked(app.Record, requires),
		State:            verification.StateOf(app.Record, requires, uploaded),
	}
	v.Status = statusText(v)
	return v
}

// statusText is the one-line summary shown in listings.
func statusText(v View) string {
	if v.Locked {
		return "verified"
	}
	if v.Completeness.Complete {
		return "pending review"
	}
	missing := make([]string, 0, len(v.Completeness.Missing))
	for _, d := range v.Completeness.Missing {
		missing = append(missing, string(d))
	}
	return "missing: " + strings.Join(missing, ", ")
}

func docSet(files []File) eligibility.DocSet {
	set := eligibility.NewDocSet()
	for _, f := range files {
		set.Add(f.FileType)
	}
	return set
}
