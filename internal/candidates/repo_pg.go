package candidates

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

const selectCandidate = `
SELECT id, user_id, full_name, birthdate, region_id, phone, school, city, created_at, updated_at
FROM candidates`

func (r *PGRepo) Create(ctx context.Context, c Candidate) error {
	const query = `
INSERT INTO candidates (id, user_id, full_name, birthdate, region_id, phone, school, city, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.UserID, c.FullName, nullableDate(c.Birthdate), c.RegionID,
		nullable(c.Phone), nullable(c.School), nullable(c.City),
	)
	return err
}

// Update only touches rows owned by c.UserID.
func (r *PGRepo) Update(ctx context.Context, c Candidate) error {
	const query = `
UPDATE candidates SET
  full_name = $3,
  birthdate = $4,
  region_id = $5,
  phone = $6,
  school = $7,
  city = $8,
  updated_at = now()
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID, c.UserID, c.FullName, nullableDate(c.Birthdate), c.RegionID,
		nullable(c.Phone), nullable(c.School), nullable(c.City),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (Candidate, error) {
	c, err := scanCandidate(r.DB.QueryRowContext(ctx, selectCandidate+`
WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Candidate{}, ErrNotFound
	}
	return c, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Candidate, error) {
	rows, err := r.DB.QueryContext(ctx, selectCandidate+`
WHERE user_id = $1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var c Candidate
	var birthdate sql.NullTime
	var phone, school, city sql.NullString
	if err := row.Scan(&c.ID, &c.UserID, &c.FullName, &birthdate, &c.RegionID, &phone, &school, &city, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Candidate{}, err
	}
	if birthdate.Valid {
		d := birthdate.Time.UTC()
		c.Birthdate = &d
	}
	c.Phone = phone.String
	c.School = school.String
	c.City = city.String
	return c, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}
