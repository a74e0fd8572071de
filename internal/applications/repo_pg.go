package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hippo-backend/internal/candidates"
	"hippo-backend/internal/eligibility"
	"hippo-backend/internal/shared/storage/db"
	"hippo-backend/internal/verification"
)

type PGRepo struct {
	DB *sql.DB
}

const selectApplication = `
SELECT id, app_no, user_id, region_id, candidate_kind, candidate_ref, candidate_full_name, candidate_birthdate,
       payment_verified, candidate_doc_verified, parent_doc_status, verified_at, verified_by,
       exported_at, exported_by, exported_count, created_at, updated_at
FROM applications`

func (r *PGRepo) Create(ctx context.Context, app Application) (Application, error) {
	const query = `
INSERT INTO applications (
    id, user_id, region_id, candidate_kind, candidate_ref, candidate_full_name, candidate_birthdate,
    payment_verified, candidate_doc_verified, parent_doc_status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
RETURNING app_no`
	var birthdate any
	if app.CandidateBirthdate != nil {
		birthdate = app.CandidateBirthdate.UTC().Format("2006-01-02")
	}
	err := r.DB.QueryRowContext(ctx, query,
		app.ID,
		app.OwnerUserID,
		app.RegionID,
		string(app.CandidateKind),
		app.CandidateRef,
		app.CandidateFullName,
		birthdate,
		app.Payment,
		app.CandidateDoc,
		string(app.Parent),
		app.CreatedAt,
	).Scan(&app.AppNo)
	if err != nil {
		return Application{}, err
	}
	app.UpdatedAt = app.CreatedAt
	return app, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (Application, error) {
	app, err := scanApplication(r.DB.QueryRowContext(ctx, selectApplication+`
WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return app, err
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Application, error) {
	query, args := listQuery(f)
	if query == "" {
		return []Application{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// listQuery renders f as SQL. An empty query means nothing can match.
func listQuery(f Filter) (string, []any) {
	var where []string
	var args []any
	if f.OwnerUserID != "" {
		args = append(args, f.OwnerUserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if !f.AnyRegion {
		if len(f.RegionIDs) == 0 {
			return "", nil
		}
		var ph string
		ph, args = placeholders(args, f.RegionIDs)
		where = append(where, "region_id IN ("+ph+")")
	}
	if len(f.IDs) > 0 {
		var ph string
		ph, args = uuidPlaceholders(args, f.IDs)
		where = append(where, "id IN ("+ph+")")
	}

	query := selectApplication
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY created_at DESC, app_no DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf("\nLIMIT $%d", len(args))
	}
	return query, args
}

func placeholders(args []any, values []string) (string, []any) {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		args = append(args, v)
		parts = append(parts, fmt.Sprintf("$%d", len(args)))
	}
	return strings.Join(parts, ", "), args
}

// uuidPlaceholders is placeholders for uuid columns. Parseable ids are sent
// in canonical lowercase form and every parameter is cast to uuid.
func uuidPlaceholders(args []any, ids []string) (string, []any) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		}
		args = append(args, id)
		parts = append(parts, fmt.Sprintf("$%d::uuid", len(args)))
	}
	return strings.Join(parts, ", "), args
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	return affected(res, err)
}

func (r *PGRepo) UpdateVerification(ctx context.Context, id string, rec verification.Record) error {
	const query = `
UPDATE applications SET
  payment_verified = $2,
  candidate_doc_verified = $3,
  parent_doc_status = $4,
  verified_at = $5,
  verified_by = $6,
  updated_at = now()
WHERE id = $1`
	var verifiedAt sql.NullTime
	var verifiedBy sql.NullString
	if rec.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: rec.VerifiedAt.UTC(), Valid: true}
		verifiedBy = sql.NullString{String: rec.VerifiedBy, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, id, rec.Payment, rec.CandidateDoc, string(rec.Parent), verifiedAt, verifiedBy)
	return affected(res, err)
}

func (r *PGRepo) UpsertFile(ctx context.Context, f File) error {
	const query = `
INSERT INTO application_files (
    id, application_id, file_type, storage_path, mime_type, size_bytes, source_type, source_id, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
ON CONFLICT (application_id, file_type) DO UPDATE SET
  storage_path = EXCLUDED.storage_path,
  mime_type = EXCLUDED.mime_type,
  size_bytes = EXCLUDED.size_bytes,
  source_type = EXCLUDED.source_type,
  source_id = EXCLUDED.source_id,
  updated_at = now()`
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	var sourceID sql.NullString
	if f.SourceID != "" {
		sourceID = sql.NullString{String: f.SourceID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		f.ID,
		f.ApplicationID,
		string(f.FileType),
		f.StoragePath,
		f.MimeType,
		f.SizeBytes,
		string(f.SourceType),
		sourceID,
	)
	return err
}

const selectFile = `
SELECT id, application_id, file_type, storage_path, mime_type, size_bytes, source_type, source_id, created_at, updated_at
FROM application_files`

func (r *PGRepo) ListFiles(ctx context.Context, applicationIDs []string) ([]File, error) {
	if len(applicationIDs) == 0 {
		return []File{}, nil
	}
	ph, args := uuidPlaceholders(nil, applicationIDs)
	rows, err := r.DB.QueryContext(ctx, selectFile+`
WHERE application_id IN (`+ph+`)
ORDER BY application_id, file_type`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGRepo) FileByPath(ctx context.Context, applicationID, path string) (File, error) {
	f, err := scanFile(r.DB.QueryRowContext(ctx, selectFile+`
WHERE application_id = $1 AND storage_path = $2
LIMIT 1`, applicationID, path))
	if errors.Is(err, sql.ErrNoRows) {
		return File{}, ErrNotFound
	}
	return f, err
}

func (r *PGRepo) MarkExported(ctx context.Context, ids []string, by string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := uuidPlaceholders([]any{at.UTC(), by}, ids)
	_, err := r.DB.ExecContext(ctx, `
UPDATE applications SET exported_at = $1, exported_by = $2, exported_count = 0
WHERE id IN (`+ph+`)`, args...)
	return err
}

// SetExportCount writes every per-application count in one transaction.
func (r *PGRepo) SetExportCount(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for id, n := range counts {
			if _, err := tx.ExecContext(ctx, `UPDATE applications SET exported_count = $2 WHERE id = $1`, id, n); err != nil {
				return fmt.Errorf("set export count %s: %w", id, err)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var kind, parent string
	var birthdate, verifiedAt, exportedAt sql.NullTime
	var verifiedBy, exportedBy sql.NullString
	err := row.Scan(
		&app.ID,
		&app.AppNo,
		&app.OwnerUserID,
		&app.RegionID,
		&kind,
		&app.CandidateRef,
		&app.CandidateFullName,
		&birthdate,
		&app.Payment,
		&app.CandidateDoc,
		&parent,
		&verifiedAt,
		&verifiedBy,
		&exportedAt,
		&exportedBy,
		&app.ExportedCount,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return Application{}, err
	}
	app.CandidateKind = candidates.Kind(kind)
	status, err := verification.ParseGuardianStatus(parent)
	if err != nil {
		return Application{}, fmt.Errorf("application %s: %w", app.ID, err)
	}
	app.Parent = status
	if birthdate.Valid {
		d := birthdate.Time.UTC()
		app.CandidateBirthdate = &d
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		app.VerifiedAt = &t
		app.VerifiedBy = verifiedBy.String
	}
	if exportedAt.Valid {
		t := exportedAt.Time
		app.ExportedAt = &t
	}
	app.ExportedBy = exportedBy.String
	return app, nil
}

func scanFile(row rowScanner) (File, error) {
	var f File
	var fileType, sourceType string
	var sourceID sql.NullString
	err := row.Scan(
		&f.ID,
		&f.ApplicationID,
		&fileType,
		&f.StoragePath,
		&f.MimeType,
		&f.SizeBytes,
		&sourceType,
		&sourceID,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return File{}, err
	}
	f.FileType = eligibility.DocType(fileType)
	f.SourceType = SourceType(sourceType)
	f.SourceID = sourceID.String
	return f, nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
