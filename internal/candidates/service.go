package candidates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/telemetry"
	"hippo-backend/internal/shared/util"
	"hippo-backend/internal/users"
)

// RegionChecker confirms a region can be chosen by participants.
type RegionChecker interface {
	IsActive(ctx context.Context, regionID string) (bool, error)
}

// ProfileSource loads the user profile behind profile-kind candidates.
type ProfileSource interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

type Service struct {
	Repo     Repo
	Regions  RegionChecker
	Profiles ProfileSource
	now      func() time.Time
}

func NewService(repo Repo, regions RegionChecker, profiles ProfileSource) *Service {
	return &Service{Repo: repo, Regions: regions, Profiles: profiles, now: time.Now}
}

// Input is the raw candidate form.
type Input struct {
	FullName  string
	Birthdate string
	RegionID  string
	Phone     string
	School    string
	City      string
}

// Save creates a candidate when id is empty and updates the caller's candidate otherwise.
func (s *Service) Save(ctx context.Context, userID, id string, in Input) (Candidate, error) {
	if strings.TrimSpace(userID) == "" {
		return Candidate{}, apperr.Unauthenticated("Not authenticated")
	}
	c := Candidate{
		UserID:   userID,
		FullName: util.NormalizeName(in.FullName),
		RegionID: strings.TrimSpace(in.RegionID),
		Phone:    strings.TrimSpace(in.Phone),
		School:   strings.TrimSpace(in.School),
		City:     strings.TrimSpace(in.City),
	}
	if c.FullName == "" {
		return Candidate{}, apperr.Validation("full name required")
	}
	raw := strings.TrimSpace(in.Birthdate)
	if raw == "" {
		return Candidate{}, apperr.Validation("birthdate required")
	}
	d, err := util.ParseDate(raw)
	if err != nil {
		return Candidate{}, apperr.Validation("birthdate must be YYYY-MM-DD")
	}
	if d.After(s.now().UTC()) {
		return Candidate{}, apperr.Validation("birthdate is in the future")
	}
	c.Birthdate = &d
	if err := s.checkRegion(ctx, c.RegionID); err != nil {
		return Candidate{}, err
	}

	if id == "" {
		c.ID = uuid.NewString()
		if err := s.Repo.Create(ctx, c); err != nil {
			return Candidate{}, err
		}
		telemetry.Info("candidates.created", map[string]any{"user_id": userID, "candidate_id": c.ID})
		return s.Get(ctx, userID, c.ID)
	}

	if _, err := uuid.Parse(id); err != nil {
		return Candidate{}, apperr.NotFound("candidate not found")
	}
	c.ID = id
	if err := s.Repo.Update(ctx, c); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Candidate{}, apperr.Wrap(apperr.ErrNotFound, "candidate not found", err)
		}
		return Candidate{}, err
	}
	return s.Get(ctx, userID, id)
}

// Get returns a candidate owned by userID. Foreign candidates are reported as missing.
func (s *Service) Get(ctx context.Context, userID, id string) (Candidate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Candidate{}, apperr.NotFound("candidate not found")
	}
	c, err := s.Repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) || (err == nil && c.UserID != userID) {
		return Candidate{}, apperr.NotFound("candidate not found")
	}
	return c, err
}

func (s *Service) List(ctx context.Context, userID string) ([]Candidate, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Resolve loads the subject an owner wants to file an application for.
func (s *Service) Resolve(ctx context.Context, ownerID string, kind Kind, ref string) (Subject, error) {
	ref = strings.TrimSpace(ref)
	switch kind {
	case KindProfile:
		if ref == "" {
			ref = ownerID
		}
		if ref != ownerID {
			return Subject{}, apperr.Forbidden("Forbidden")
		}
		user, err := s.Profiles.GetByID(ctx, ownerID)
		if err != nil {
			return Subject{}, err
		}
		if user.RegionID == "" {
			return Subject{}, apperr.Validation("profile region not selected")
		}
		if user.FullName == "" || user.Birthdate == nil {
			return Subject{}, apperr.Validation("profile full name and birthdate required")
		}
		return Subject{
			Kind:        KindProfile,
			Ref:         ownerID,
			OwnerUserID: ownerID,
			FullName:    user.FullName,
			Birthdate:   user.Birthdate,
			RegionID:    user.RegionID,
		}, nil
	case KindExtra:
		if _, err := uuid.Parse(ref); err != nil {
			return Subject{}, apperr.Validation("candidateRef must be uuid")
		}
		c, err := s.Repo.Get(ctx, ref)
		if errors.Is(err, ErrNotFound) {
			return Subject{}, apperr.Wrap(apperr.ErrNotFound, "candidate not found", err)
		}
		if err != nil {
			return Subject{}, err
		}
		if c.UserID != ownerID {
			return Subject{}, apperr.Forbidden("Forbidden")
		}
		return Subject{
			Kind:        KindExtra,
			Ref:         c.ID,
			OwnerUserID: ownerID,
			FullName:    c.FullName,
			Birthdate:   c.Birthdate,
			RegionID:    c.RegionID,
		}, nil
	default:
		return Subject{}, apperr.Validation("candidateKind must be profile|extra")
	}
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
