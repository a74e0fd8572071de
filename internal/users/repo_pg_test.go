package users

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetByIDScansProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	birth := time.Date(2012, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "email", "name", "picture_url", "full_name", "birthdate", "phone", "school", "city", "region_id", "created_at", "updated_at"}).
		AddRow("u1", "u1@example.com", nil, nil, "Анна Смирнова", birth, nil, "Лицей 2", nil, "bel", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users\nWHERE id = $1")).WithArgs("u1").WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	user, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.FullName != "Анна Смирнова" || user.School != "Лицей 2" || user.RegionID != "bel" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.Birthdate == nil || !user.Birthdate.Equal(birth) {
		t.Fatalf("unexpected birthdate %v", user.Birthdate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoSaveProfileMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs("ghost", "A B", nil, nil, nil, nil, "bel").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.SaveProfile(context.Background(), "ghost", Profile{FullName: "A B", RegionID: "bel"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
