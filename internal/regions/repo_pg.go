package regions

import (
	"context"
	"database/sql"
	"errors"

	"hippo-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const selectRegion = `
SELECT id, name, is_active, payment_receiver, payment_note, qr_path, created_at, updated_at
FROM regions`

func (r *PGRepo) List(ctx context.Context, activeOnly bool) ([]Region, error) {
	query := selectRegion + `
WHERE ($1 = false OR is_active)
ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Region{}
	for rows.Next() {
		reg, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, id string) (Region, error) {
	query := selectRegion + `
WHERE id = $1`
	reg, err := scanRegion(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Region{}, ErrNotFound
	}
	return reg, err
}

func (r *PGRepo) Create(ctx context.Context, reg Region) error {
	const query = `
INSERT INTO regions (id, name, is_active, payment_receiver, payment_note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.DB.ExecContext(ctx, query, reg.ID, reg.Name, reg.IsActive, nullable(reg.PaymentReceiver), nullable(reg.PaymentNote))
	if db.IsUniqueViolation(err) {
		return ErrExists
	}
	return err
}

func (r *PGRepo) Update(ctx context.Context, id string, u Update) error {
	const query = `
UPDATE regions SET
  name = $2,
  is_active = $3,
  payment_receiver = $4,
  payment_note = $5,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, u.Name, u.IsActive, nullable(u.PaymentReceiver), nullable(u.PaymentNote))
	return affected(res, err)
}

func (r *PGRepo) SetQRPath(ctx context.Context, id, path string) error {
	const query = `UPDATE regions SET qr_path = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, path)
	return affected(res, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegion(row rowScanner) (Region, error) {
	var reg Region
	var receiver, note, qr sql.NullString
	if err := row.Scan(&reg.ID, &reg.Name, &reg.IsActive, &receiver, &note, &qr, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		return Region{}, err
	}
	reg.PaymentReceiver = receiver.String
	reg.PaymentNote = note.String
	reg.QRPath = qr.String
	return reg, nil
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

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
