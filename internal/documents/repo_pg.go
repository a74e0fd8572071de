package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectDocument = `
SELECT id, user_id, kind, candidate_id, storage_path, mime_type, size_bytes, created_at
FROM library_documents`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO library_documents (id, user_id, kind, candidate_id, storage_path, mime_type, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var candidateID sql.NullString
	if doc.CandidateID != "" {
		candidateID = sql.NullString{String: doc.CandidateID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		string(doc.Kind),
		candidateID,
		doc.StoragePath,
		doc.MimeType,
		doc.SizeBytes,
		doc.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, selectDocument+`
WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

func (r *PGRepo) Latest(ctx context.Context, userID string, kind Kind, candidateID string) (Document, error) {
	query := selectDocument + `
WHERE user_id = $1 AND kind = $2 AND ($3 = '' OR candidate_id::text = $3)
ORDER BY created_at DESC
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, userID, string(kind), candidateID))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

func (r *PGRepo) List(ctx context.Context, userID string, kind Kind) ([]Document, error) {
	query := selectDocument + `
WHERE user_id = $1 AND ($2 = '' OR kind = $2)
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM library_documents WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var kind string
	var candidateID sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&kind,
		&candidateID,
		&doc.StoragePath,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.Kind = Kind(kind)
	if candidateID.Valid {
		doc.CandidateID = candidateID.String
	}
	return doc, nil
}
