package regions

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("region not found")
	ErrExists   = errors.New("region already exists")
)

type Repo interface {
	List(ctx context.Context, activeOnly bool) ([]Region, error)
	Get(ctx context.Context, id string) (Region, error)
	Create(ctx context.Context, r Region) error
	Update(ctx context.Context, id string, u Update) error
	SetQRPath(ctx context.Context, id, path string) error
}
