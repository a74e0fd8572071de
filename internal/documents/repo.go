package documents

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// DocumentsRepo defines persistence operations for library documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// Latest returns the newest document of kind; candidateID narrows candidate documents.
	Latest(ctx context.Context, userID string, kind Kind, candidateID string) (Document, error)
	// List returns the user's documents newest first; an empty kind lists all.
	List(ctx context.Context, userID string, kind Kind) ([]Document, error)
	Delete(ctx context.Context, userID, id string) error
}
