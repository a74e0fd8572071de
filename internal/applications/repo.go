package applications

import (
	"context"
	"errors"
	"time"

	"hippo-backend/internal/verification"
)

var ErrNotFound = errors.New("application not found")

type Repo interface {
	// Create stores app and returns it with the assigned AppNo.
	Create(ctx context.Context, app Application) (Application, error)
	Get(ctx context.Context, id string) (Application, error)
	// List returns matching applications newest first.
	List(ctx context.Context, f Filter) ([]Application, error)
	Delete(ctx context.Context, id string) error
	UpdateVerification(ctx context.Context, id string, rec verification.Record) error

	// UpsertFile replaces the file of the same (application, type).
	UpsertFile(ctx context.Context, f File) error
	ListFiles(ctx context.Context, applicationIDs []string) ([]File, error)
	FileByPath(ctx context.Context, applicationID, path string) (File, error)

	MarkExported(ctx context.Context, ids []string, by string, at time.Time) error
	SetExportCount(ctx context.Context, counts map[string]int) error
}
