package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		nullableString(user.Name),
		nullableString(user.PictureURL),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, name, picture_url, full_name, birthdate, phone, school, city, region_id, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	var name, pictureURL, fullName, phone, school, city, regionID sql.NullString
	var birthdate sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&name,
		&pictureURL,
		&fullName,
		&birthdate,
		&phone,
		&school,
		&city,
		&regionID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Name = name.String
	user.PictureURL = pictureURL.String
	user.FullName = fullName.String
	user.Phone = phone.String
	user.School = school.String
	user.City = city.String
	user.RegionID = regionID.String
	if birthdate.Valid {
		b := birthdate.Time.UTC()
		user.Birthdate = &b
	}
	return user, nil
}

// SaveProfile updates the profile columns. The user row must exist; it is
// created at login.
func (r *PGRepo) SaveProfile(ctx context.Context, userID string, p Profile) error {
	const query = `
UPDATE users SET
  full_name = $2,
  birthdate = $3,
  phone = $4,
  school = $5,
  city = $6,
  region_id = $7,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		userID,
		p.FullName,
		nullableDate(p.Birthdate),
		nullableString(p.Phone),
		nullableString(p.School),
		nullableString(p.City),
		p.RegionID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC()
}
