package applications

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hippo-backend/internal/eligibility"
	"hippo-backend/internal/verification"
)

type fileKey struct {
	appID    string
	fileType eligibility.DocType
}

type MemoryRepo struct {
	mu     sync.RWMutex
	nextNo int64
	apps   map[string]Application
	files  map[fileKey]File
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		apps:  make(map[string]Application),
		files: make(map[fileKey]File),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextNo++
	app.AppNo = r.nextNo
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	app.UpdatedAt = app.CreatedAt
	r.apps[app.ID] = app
	return app, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Application{}
	for _, app := range r.apps {
		if f.OwnerUserID != "" && app.OwnerUserID != f.OwnerUserID {
			continue
		}
		if !f.AnyRegion && !slices.Contains(f.RegionIDs, app.RegionID) {
			continue
		}
		if len(f.IDs) > 0 && !slices.Contains(f.IDs, app.ID) {
			continue
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].AppNo > out[j].AppNo
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return ErrNotFound
	}
	delete(r.apps, id)
	for key := range r.files {
		if key.appID == id {
			delete(r.files, key)
		}
	}
	return nil
}

func (r *MemoryRepo) UpdateVerification(ctx context.Context, id string, rec verification.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return ErrNotFound
	}
	app.Record = rec
	app.UpdatedAt = time.Now().UTC()
	r.apps[id] = app
	return nil
}

func (r *MemoryRepo) UpsertFile(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[f.ApplicationID]; !ok {
		return ErrNotFound
	}
	key := fileKey{appID: f.ApplicationID, fileType: f.FileType}
	now := time.Now().UTC()
	if existing, ok := r.files[key]; ok {
		f.ID = existing.ID
		f.CreatedAt = existing.CreatedAt
	} else {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	r.files[key] = f
	return nil
}

func (r *MemoryRepo) ListFiles(ctx context.Context, applicationIDs []string) ([]File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []File{}
	for key, f := range r.files {
		if slices.Contains(applicationIDs, key.appID) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ApplicationID != out[j].ApplicationID {
			return out[i].ApplicationID < out[j].ApplicationID
		}
		return out[i].FileType < out[j].FileType
	})
	return out, nil
}

func (r *MemoryRepo) FileByPath(ctx context.Context, applicationID, path string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for key, f := range r.files {
		if key.appID == applicationID && f.StoragePath == path {
			return f, nil
		}
	}
	return File{}, ErrNotFound
}

func (r *MemoryRepo) MarkExported(ctx context.Context, ids []string, by string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		app, ok := r.apps[id]
		if !ok {
			continue
		}
		exportedAt := at
		app.ExportedAt = &exportedAt
		app.ExportedBy = by
		app.ExportedCount = 0
		r.apps[id] = app
	}
	return nil
}

func (r *MemoryRepo) SetExportCount(ctx context.Context, counts map[string]int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range counts {
		app, ok := r.apps[id]
		if !ok {
			continue
		}
		app.ExportedCount = n
		r.apps[id] = app
	}
	return nil
}
