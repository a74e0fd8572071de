package exports

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hippo-backend/internal/access"
	"hippo-backend/internal/applications"
	"hippo-backend/internal/eligibility"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/metrics"
	"hippo-backend/internal/shared/storage/object"
	"hippo-backend/internal/shared/telemetry"
	"hippo-backend/internal/shared/util"
)

const (
	signedURLTTL    = 300 * time.Second
	signConcurrency = 8
	defaultName     = "Кандидат"
)

// Selector picks the applications an admin may export and records the export.
type Selector interface {
	SelectForExport(ctx context.Context, caller access.Caller, sel applications.ExportSelection) ([]applications.Application, []applications.File, error)
	RecordExport(ctx context.Context, caller access.Caller, ids []string, counts map[string]int) error
}

// Sender delivers a batch to the external spreadsheet service.
type Sender interface {
	Send(ctx context.Context, payload Payload) (string, error)
}

// Item is one exported file.
type Item struct {
	ApplicationID string              `json:"application_id"`
	SignedURL     string              `json:"signed_url"`
	RegionID      string              `json:"region_id"`
	FileType      eligibility.DocType `json:"file_type"`
	AppNo         int64               `json:"app_no"`
	CandidateName string              `json:"candidate_name"`
	Ext           string              `json:"ext"`
}

// Payload is the body posted to the export endpoint.
type Payload struct {
	RegionID string `json:"region_id"`
	Items    []Item `json:"items"`
}

// Request selects applications by explicit ids or by region.
type Request struct {
	RegionID       string
	ApplicationIDs []string
}

// Result reports a finished export. Warn is set when bookkeeping failed after
// the batch was delivered.
type Result struct {
	OK   bool   `json:"ok"`
	Sent int    `json:"sent"`
	GAS  string `json:"gas"`
	Apps int    `json:"apps"`
	Warn string `json:"warn,omitempty"`
}

type Service struct {
	Apps  Selector
	Store object.ObjectStore
	GAS   Sender
}

func NewService(apps Selector, store object.ObjectStore, gas Sender) *Service {
	return &Service{Apps: apps, Store: store, GAS: gas}
}

func (s *Service) Export(ctx context.Context, caller access.Caller, req Request) (Result, error) {
	if s.GAS == nil {
		return Result{}, apperr.Upstream("export not configured", nil)
	}
	regionID := strings.TrimSpace(req.RegionID)
	if regionID == "" {
		regionID = "all"
	}

	apps, files, err := s.Apps.SelectForExport(ctx, caller, applications.ExportSelection{
		RegionID: regionID,
		IDs:      req.ApplicationIDs,
	})
	if err != nil {
		return Result{}, err
	}

	items, err := s.buildItems(ctx, apps, files)
	if err != nil {
		return Result{}, err
	}

	gasText, err := s.GAS.Send(ctx, Payload{RegionID: regionID, Items: items})
	if err != nil {
		metrics.AddExported("failed", len(apps))
		return Result{}, err
	}
	metrics.AddExported("sent", len(apps))

	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	counts := make(map[string]int, len(apps))
	for _, it := range items {
		counts[it.ApplicationID]++
	}

	res := Result{OK: true, Sent: len(items), GAS: gasText, Apps: len(apps)}
	if err := s.Apps.RecordExport(ctx, caller, ids, counts); err != nil {
		telemetry.Warn("exports.bookkeeping_failed", map[string]any{"admin_id": caller.UserID, "apps": len(ids), "err": err})
		res.Warn = err.Error()
	}
	telemetry.Info("exports.sent", map[string]any{
		"admin_id":  caller.UserID,
		"region_id": regionID,
		"apps":      len(apps),
		"items":     len(items),
	})
	return res, nil
}

// buildItems signs every file concurrently. Files that cannot be signed are skipped.
func (s *Service) buildItems(ctx context.Context, apps []applications.Application, files []applications.File) ([]Item, error) {
	byID := make(map[string]applications.Application, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}

	slots := make([]*Item, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for i, f := range files {
		app, ok := byID[f.ApplicationID]
		if !ok {
			continue
		}
		g.Go(func() error {
			url, err := s.Store.SignedURL(gctx, f.StoragePath, signedURLTTL)
			if err != nil {
				telemetry.Warn("exports.sign_failed", map[string]any{"application_id": f.ApplicationID, "path": f.StoragePath, "err": err})
				return gctx.Err()
			}
			name := app.CandidateFullName
			if name == "" {
				name = defaultName
			}
			slots[i] = &Item{
				ApplicationID: f.ApplicationID,
				SignedURL:     url,
				RegionID:      app.RegionID,
				FileType:      f.FileType,
				AppNo:         app.AppNo,
				CandidateName: name,
				Ext:           util.ExtOfKey(f.StoragePath),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(files))
	for _, it := range slots {
		if it != nil {
			items = append(items, *it)
		}
	}
	return items, nil
}
