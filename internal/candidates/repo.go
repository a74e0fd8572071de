package candidates

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("candidate not found")

type Repo interface {
	Create(ctx context.Context, c Candidate) error
	Update(ctx context.Context, c Candidate) error
	Get(ctx context.Context, id string) (Candidate, error)
	ListByUser(ctx context.Context, userID string) ([]Candidate, error)
}
