package access

import "context"

// Repo persists role grants.
type Repo interface {
	ListGrants(ctx context.Context, userID string) ([]Grant, error)
	ListAll(ctx context.Context) ([]Grant, error)
	Put(ctx context.Context, grant Grant) error
	Delete(ctx context.Context, grant Grant) error
}
