package access

import (
	"context"
	"database/sql"
)

// PGRepo stores grants in user_roles.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) ListGrants(ctx context.Context, userID string) ([]Grant, error) {
	const query = `
SELECT user_id, role, region_id, created_at
FROM user_roles
WHERE user_id = $1
ORDER BY role, region_id`
	return r.query(ctx, query, userID)
}

func (r *PGRepo) ListAll(ctx context.Context) ([]Grant, error) {
	const query = `
SELECT user_id, role, region_id, created_at
FROM user_roles
ORDER BY user_id, role, region_id`
	return r.query(ctx, query)
}

func (r *PGRepo) Put(ctx context.Context, grant Grant) error {
	const query = `
INSERT INTO user_roles (user_id, role, region_id, created_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id, role, region_id) DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query, grant.UserID, string(grant.Role), grant.RegionID)
	return err
}

func (r *PGRepo) Delete(ctx context.Context, grant Grant) error {
	const query = `DELETE FROM user_roles WHERE user_id = $1 AND role = $2 AND region_id = $3`
	_, err := r.DB.ExecContext(ctx, query, grant.UserID, string(grant.Role), grant.RegionID)
	return err
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Grant, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Grant
	for rows.Next() {
		var g Grant
		var role string
		if err := rows.Scan(&g.UserID, &role, &g.RegionID, &g.CreatedAt); err != nil {
			return nil, err
		}
		g.Role = Role(role)
		out = append(out, g)
	}
	return out, rows.Err()
}
