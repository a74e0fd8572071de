package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/util"
)

// RegionChecker confirms a region can be chosen by participants.
type RegionChecker interface {
	IsActive(ctx context.Context, regionID string) (bool, error)
}

type Service struct {
	Repo    Repo
	Regions RegionChecker
}

func NewService(repo Repo, regions RegionChecker) *Service {
	return &Service{Repo: repo, Regions: regions}
}

// UpsertFromAuth persists the user identity from OAuth so applications have a stable owner row.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, apperr.Unauthenticated("Not authenticated")
	}
	user, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.Wrap(apperr.ErrNotFound, "user not found", err)
	}
	return user, err
}

// ProfileInput is the raw profile form.
type ProfileInput struct {
	FullName  string
	Birthdate string
	Phone     string
	School    string
	City      string
	RegionID  string
}

// SaveProfile validates and stores the caller's profile.
func (s *Service) SaveProfile(ctx context.Context, userID string, in ProfileInput) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, apperr.Unauthenticated("Not authenticated")
	}
	p := Profile{
		FullName: util.NormalizeName(in.FullName),
		Phone:    strings.TrimSpace(in.Phone),
		School:   strings.TrimSpace(in.School),
		City:     strings.TrimSpace(in.City),
		RegionID: strings.TrimSpace(in.RegionID),
	}
	if p.FullName == "" {
		return User{}, apperr.Validation("full name required")
	}
	if raw := strings.TrimSpace(in.Birthdate); raw != "" {
		d, err := util.ParseDate(raw)
		if err != nil {
			return User{}, apperr.Validation("birthdate must be YYYY-MM-DD")
		}
		if d.After(time.Now().UTC()) {
			return User{}, apperr.Validation("birthdate is in the future")
		}
		p.Birthdate = &d
	}
	if err := s.checkRegion(ctx, p.RegionID); err != nil {
		return User{}, err
	}
	if err := s.Repo.SaveProfile(ctx, userID, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.Wrap(apperr.ErrNotFound, "user not found", err)
		}
		return User{}, err
	}
	return s.GetByID(ctx, userID)
}

func (s *Service) checkRegion(ctx context.Context, regionID string) error {
	if regionID == "" {
		return apperr.Validation("invalid region")
	}
	if s.Regions == nil {
		return nil
	}
	ok, err := s.Regions.IsActive(ctx, regionID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("invalid region")
	}
	return nil
}
