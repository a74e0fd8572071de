package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

type Repo interface {
	// Upsert stores identity fields from the identity provider and leaves the profile alone.
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	SaveProfile(ctx context.Context, userID string, profile Profile) error
}
