package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"petcare-client/internal/domain/users"
	"petcare-client/internal/session"
)

func TestSessionRepo_LoadMissingIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM client_sessions")).
		WithArgs("default").
		WillReturnRows(sqlmock.NewRows([]string{"access_token", "refresh_token", "user_json", "saved_at"}))

	_, err = NewSessionRepo(db, "").Load(context.Background())
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionRepo_LoadScansTokenAndUserTogether(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	saved := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM client_sessions")).
		WithArgs("work").
		WillReturnRows(sqlmock.NewRows([]string{"access_token", "refresh_token", "user_json", "saved_at"}).
			AddRow("acc", "ref", []byte(`{"id":7,"email":"a@b.c","role":"OWNER"}`), saved))

	s, err := NewSessionRepo(db, "work").Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Tokens.Access != "acc" || s.Tokens.Refresh != "ref" {
		t.Fatalf("tokens mismatch: %+v", s.Tokens)
	}
	if s.User.ID != 7 || s.User.Role != users.RoleOwner {
		t.Fatalf("user mismatch: %+v", s.User)
	}
	if !s.SavedAt.Equal(saved) {
		t.Fatalf("saved_at mismatch: %v", s.SavedAt)
	}
}

func TestSessionRepo_SaveUpsertsSingleRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	s := session.Session{
		Tokens:  session.Tokens{Access: "acc", Refresh: "ref"},
		User:    users.User{ID: 3, Email: "x@y.z", Role: users.RoleProvider},
		SavedAt: time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (profile) DO UPDATE")).
		WithArgs("default", "acc", "ref", sqlmock.AnyArg(), s.SavedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewSessionRepo(db, "default").Save(context.Background(), s); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionRepo_ClearDeletesProfileRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM client_sessions")).
		WithArgs("default").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewSessionRepo(db, "default").Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS client_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
