package regions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"hippo-backend/internal/access"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/filecheck"
	"hippo-backend/internal/shared/storage/object"
	"hippo-backend/internal/shared/telemetry"
	"hippo-backend/internal/shared/util"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

type Service struct {
	Repo  Repo
	Store object.ObjectStore
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store}
}

// IsActive reports whether participants may choose the region.
func (s *Service) IsActive(ctx context.Context, regionID string) (bool, error) {
	reg, err := s.Repo.Get(ctx, regionID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return reg.IsActive, nil
}

// Exists reports whether the region row exists regardless of its state.
func (s *Service) Exists(ctx context.Context, regionID string) (bool, error) {
	_, err := s.Repo.Get(ctx, regionID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListActive returns the regions shown to participants.
func (s *Service) ListActive(ctx context.Context) ([]Region, error) {
	return s.Repo.List(ctx, true)
}

func (s *Service) ListAll(ctx context.Context, caller access.Caller) ([]Region, error) {
	if !caller.Scope.IsSuper {
		return nil, apperr.Forbidden("Forbidden")
	}
	return s.Repo.List(ctx, false)
}

func (s *Service) Get(ctx context.Context, id string) (Region, error) {
	reg, err := s.Repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Region{}, apperr.Wrap(apperr.ErrNotFound, "region not found", err)
	}
	return reg, err
}

// CreateInput is the admin form for a new region.
type CreateInput struct {
	ID              string
	Name            string
	IsActive        *bool
	PaymentReceiver string
	PaymentNote     string
}

func (s *Service) Create(ctx context.Context, caller access.Caller, in CreateInput) (Region, error) {
	if !caller.Scope.IsSuper {
		return Region{}, apperr.Forbidden("Forbidden")
	}
	reg := Region{
		ID:              strings.ToLower(strings.TrimSpace(in.ID)),
		Name:            strings.TrimSpace(in.Name),
		IsActive:        true,
		PaymentReceiver: strings.TrimSpace(in.PaymentReceiver),
		PaymentNote:     strings.TrimSpace(in.PaymentNote),
	}
	if !idPattern.MatchString(reg.ID) {
		return Region{}, apperr.Validation("invalid region id")
	}
	if reg.Name == "" {
		return Region{}, apperr.Validation("name required")
	}
	if in.IsActive != nil {
		reg.IsActive = *in.IsActive
	}
	if reg.PaymentNote == "" {
		reg.PaymentNote = DefaultPaymentNote
	}
	if err := s.Repo.Create(ctx, reg); err != nil {
		if errors.Is(err, ErrExists) {
			return Region{}, apperr.Wrap(apperr.ErrValidation, "region already exists", err)
		}
		return Region{}, err
	}
	telemetry.Info("regions.created", map[string]any{"region_id": reg.ID, "by": caller.UserID})
	return s.Get(ctx, reg.ID)
}

func (s *Service) Update(ctx context.Context, caller access.Caller, id string, u Update) (Region, error) {
	if !caller.Scope.IsSuper {
		return Region{}, apperr.Forbidden("Forbidden")
	}
	u.Name = strings.TrimSpace(u.Name)
	u.PaymentReceiver = strings.TrimSpace(u.PaymentReceiver)
	u.PaymentNote = strings.TrimSpace(u.PaymentNote)
	if u.Name == "" {
		return Region{}, apperr.Validation("name required")
	}
	if err := s.Repo.Update(ctx, id, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Region{}, apperr.Wrap(apperr.ErrNotFound, "region not found", err)
		}
		return Region{}, err
	}
	telemetry.Info("regions.updated", map[string]any{"region_id": id, "active": u.IsActive, "by": caller.UserID})
	return s.Get(ctx, id)
}

// UploadQR validates and stores the payment QR image of a region.
func (s *Service) UploadQR(ctx context.Context, caller access.Caller, id string, data []byte) (Region, error) {
	if !caller.Scope.IsSuper {
		return Region{}, apperr.Forbidden("Forbidden")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return Region{}, err
	}
	info, err := filecheck.Inspect(data, filecheck.QRRules)
	if err != nil {
		return Region{}, err
	}
	key := util.RegionQRKey(id, info.Ext)
	if _, err := s.Store.Put(ctx, key, info.Mime, bytes.NewReader(data)); err != nil {
		return Region{}, apperr.Upstream("storage write failed", err)
	}
	if err := s.Repo.SetQRPath(ctx, id, key); err != nil {
		return Region{}, err
	}
	telemetry.Info("regions.qr_uploaded", map[string]any{"region_id": id, "size": info.Size, "by": caller.UserID})
	return s.Get(ctx, id)
}

// QR is a region's payment QR, either as a signed URL or an open stream.
type QR struct {
	URL  string
	Body io.ReadCloser
	Mime string
}

// OpenQR returns a signed URL when the store supports it and a stream otherwise.
func (s *Service) OpenQR(ctx context.Context, id string, ttl time.Duration) (QR, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return QR{}, err
	}
	if !reg.IsActive || reg.QRPath == "" {
		return QR{}, apperr.NotFound("qr not found")
	}
	url, err := s.Store.SignedURL(ctx, reg.QRPath, ttl)
	if err == nil {
		return QR{URL: url}, nil
	}
	if !errors.Is(err, object.ErrSigningUnsupported) {
		return QR{}, apperr.Upstream("unable to sign url", err)
	}
	body, err := s.Store.Open(ctx, reg.QRPath)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return QR{}, apperr.Wrap(apperr.ErrNotFound, "qr not found", err)
		}
		return QR{}, apperr.Upstream("storage read failed", err)
	}
	return QR{Body: body, Mime: filecheck.MimeOfKey(reg.QRPath)}, nil
}
