// Package files authorizes and serves stored documents.
package files

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"hippo-backend/internal/access"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/storage/object"
	"hippo-backend/internal/shared/util"
)

const viewURLTTL = 60 * time.Second

// ApplicationFiles authorizes paths attached to applications.
type ApplicationFiles interface {
	CanViewFile(ctx context.Context, caller access.Caller, appID, path string) error
}

type Service struct {
	Store object.ObjectStore
	Apps  ApplicationFiles
}

func NewService(store object.ObjectStore, apps ApplicationFiles) *Service {
	return &Service{Store: store, Apps: apps}
}

// View is either a signed URL or an open stream of the object.
type View struct {
	URL  string
	Body io.ReadCloser
	Key  string
}

// Open checks access to path and returns a way to fetch it. Without an
// application id only the caller's own namespace is readable.
func (s *Service) Open(ctx context.Context, caller access.Caller, path, appID string) (View, error) {
	if caller.UserID == "" {
		return View{}, apperr.Unauthenticated("Not authenticated")
	}
	if strings.TrimSpace(path) == "" {
		return View{}, apperr.Validation("path required")
	}
	key, err := util.CleanKey(path)
	if err != nil {
		return View{}, apperr.Forbidden("Forbidden")
	}

	if appID = strings.TrimSpace(appID); appID != "" {
		if err := s.Apps.CanViewFile(ctx, caller, appID, key); err != nil {
			return View{}, err
		}
	} else if !strings.HasPrefix(key, util.UserPrefix(caller.UserID)) {
		return View{}, apperr.Forbidden("Forbidden")
	}

	url, err := s.Store.SignedURL(ctx, key, viewURLTTL)
	if err == nil {
		return View{URL: url}, nil
	}
	if !errors.Is(err, object.ErrSigningUnsupported) {
		return View{}, apperr.Upstream("Cannot sign url", err)
	}
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return View{}, apperr.Wrap(apperr.ErrNotFound, "file not found", err)
		}
		return View{}, apperr.Upstream("storage read failed", err)
	}
	return View{Body: body, Key: key}, nil
}
