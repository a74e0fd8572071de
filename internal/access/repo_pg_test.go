package access

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoListGrants(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"user_id", "role", "region_id", "created_at"}).
		AddRow("u1", "region_admin", "bel", created).
		AddRow("u1", "super_admin", "", created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_roles\nWHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	grants, err := repo.ListGrants(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListGrants: %v", err)
	}
	scope := ScopeFromGrants(grants)
	if !scope.IsSuper || len(scope.RegionIDs) != 1 || scope.RegionIDs[0] != "bel" {
		t.Fatalf("unexpected scope %+v", scope)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoPutIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, role, region_id) DO NOTHING")).
		WithArgs("u1", "region_admin", "kur").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.Put(context.Background(), Grant{UserID: "u1", Role: RoleRegionAdmin, RegionID: "kur"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
